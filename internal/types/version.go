// internal/types/version.go
package types

// Version identifies a buffer state. Serial increases by one on every edit;
// Lineage changes when the buffer is reloaded from scratch, so versions from
// before and after a reload are never comparable by age alone.
type Version struct {
	Serial  uint64
	Lineage uint64
}

// Compare reports the relative age of v and other: -1 if v is older,
// 0 if equally old, +1 if v is newer. Only meaningful within one lineage.
func (v Version) Compare(other Version) int {
	switch {
	case v.Serial < other.Serial:
		return -1
	case v.Serial > other.Serial:
		return 1
	default:
		return 0
	}
}

// SameLineage reports whether both versions descend from the same document
// instance (as opposed to an unrelated reload).
func (v Version) SameLineage(other Version) bool {
	return v.Lineage == other.Lineage
}

// Equivalent reports whether the two versions denote the exact same buffer
// state: same lineage and equal age.
func (v Version) Equivalent(other Version) bool {
	return v.SameLineage(other) && v.Compare(other) == 0
}
