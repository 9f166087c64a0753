package buffer

import (
	"context"
	"testing"

	"github.com/bethropolis/shade/internal/types"
)

func newTestBuffer(t *testing.T, lines ...string) *SliceBuffer {
	t.Helper()
	sb := NewSliceBuffer()
	for i, l := range lines {
		text := l
		if i < len(lines)-1 {
			text += "\n"
		}
		if err := sb.Insert(types.Position{Line: sb.LineCount() - 1, Col: len(sb.lines[sb.LineCount()-1])}, []byte(text)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	return sb
}

func TestVersionBumpsOnEdit(t *testing.T) {
	sb := NewSliceBuffer()
	v0 := sb.Version()

	if err := sb.Insert(types.Position{}, []byte("hello")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	v1 := sb.Version()

	if v0.Equivalent(v1) {
		t.Error("version should change after insert")
	}
	if !v0.SameLineage(v1) {
		t.Error("edits must stay within one lineage")
	}
	if v0.Compare(v1) != -1 {
		t.Errorf("pre-edit version should be older, Compare = %d", v0.Compare(v1))
	}
}

func TestLoadStartsNewLineage(t *testing.T) {
	sb := NewSliceBuffer()
	v0 := sb.Version()
	old := sb.LineByNumber(0)

	if err := sb.Load(t.TempDir() + "/missing.txt"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if sb.Version().SameLineage(v0) {
		t.Error("reload must start a new lineage")
	}
	if !old.Deleted() {
		t.Error("descriptors from before the reload should be marked deleted")
	}
}

func TestLineDescriptorsTrackEdits(t *testing.T) {
	sb := newTestBuffer(t, "int x = 1;", "x = 2;")

	l0 := sb.LineByNumber(0)
	l1 := sb.LineByNumber(1)

	if off, length := l0.Bounds(); off != 0 || length != 10 {
		t.Errorf("line 0 bounds = (%d,%d), want (0,10)", off, length)
	}
	// Line 1 starts after "int x = 1;\n".
	if off, length := l1.Bounds(); off != 11 || length != 6 {
		t.Errorf("line 1 bounds = (%d,%d), want (11,6)", off, length)
	}

	// Growing line 0 shifts line 1's offset; descriptors are updated in
	// place, not replaced.
	if err := sb.Insert(types.Position{Line: 0, Col: 0}, []byte("xx")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if sb.LineByNumber(1) != l1 {
		t.Fatal("descriptor identity should survive unrelated edits")
	}
	if off, _ := l1.Bounds(); off != 13 {
		t.Errorf("line 1 offset after edit = %d, want 13", off)
	}
}

func TestDeleteMarksTrailingDescriptorsDeleted(t *testing.T) {
	sb := newTestBuffer(t, "a", "b", "c")

	l2 := sb.LineByNumber(2)
	if l2 == nil || l2.Deleted() {
		t.Fatal("line 2 should exist before the delete")
	}

	// Delete lines 1..2 entirely.
	if err := sb.Delete(types.Position{Line: 0, Col: 1}, types.Position{Line: 2, Col: 1}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if sb.LineCount() != 1 {
		t.Fatalf("LineCount = %d, want 1", sb.LineCount())
	}
	if !l2.Deleted() {
		t.Error("descriptor for removed line should be flagged deleted")
	}
	if sb.LineByNumber(2) != nil {
		t.Error("LineByNumber past the end should return nil")
	}
}

func TestSnapshotMatchesBytes(t *testing.T) {
	sb := newTestBuffer(t, "int x = 1;", "x = 2;")

	snap, err := sb.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap != "int x = 1;\nx = 2;" {
		t.Errorf("Snapshot = %q", snap)
	}
}

func TestSnapshotHonorsCancellation(t *testing.T) {
	sb := NewSliceBuffer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := sb.Snapshot(ctx); err == nil {
		t.Error("Snapshot with cancelled context should fail")
	}
}

func TestInsertMultiline(t *testing.T) {
	sb := NewSliceBuffer()
	if err := sb.Insert(types.Position{}, []byte("one\ntwo\nthree")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if sb.LineCount() != 3 {
		t.Fatalf("LineCount = %d, want 3", sb.LineCount())
	}
	line, err := sb.Line(1)
	if err != nil || string(line) != "two" {
		t.Errorf("Line(1) = %q, %v", line, err)
	}
	if off, length := sb.LineByNumber(2).Bounds(); off != 8 || length != 5 {
		t.Errorf("line 2 bounds = (%d,%d), want (8,5)", off, length)
	}
}
