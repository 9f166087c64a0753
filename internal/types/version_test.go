package types

import "testing"

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Version
		want int
	}{
		{"older", Version{Serial: 1, Lineage: 7}, Version{Serial: 2, Lineage: 7}, -1},
		{"newer", Version{Serial: 9, Lineage: 7}, Version{Serial: 2, Lineage: 7}, 1},
		{"equal", Version{Serial: 4, Lineage: 7}, Version{Serial: 4, Lineage: 7}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVersionEquivalent(t *testing.T) {
	base := Version{Serial: 3, Lineage: 1}

	if !base.Equivalent(Version{Serial: 3, Lineage: 1}) {
		t.Error("identical versions should be equivalent")
	}
	if base.Equivalent(Version{Serial: 4, Lineage: 1}) {
		t.Error("different serials should not be equivalent")
	}
	// Same serial from a reloaded document is a different state entirely.
	if base.Equivalent(Version{Serial: 3, Lineage: 2}) {
		t.Error("different lineages should not be equivalent")
	}
}
