// internal/buffer/slice_buffer.go
package buffer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/bethropolis/shade/internal/types"
)

// lineageCounter hands out a fresh lineage id per loaded document instance.
var lineageCounter atomic.Uint64

// SliceBuffer is a line-slice backed Buffer with version tracking and live
// line descriptors.
type SliceBuffer struct {
	mu       sync.RWMutex
	lines    [][]byte
	metas    []*Line
	version  types.Version
	filePath string
	modified bool
}

// NewSliceBuffer creates an empty SliceBuffer holding a single empty line.
func NewSliceBuffer() *SliceBuffer {
	sb := &SliceBuffer{
		lines:   [][]byte{[]byte("")},
		version: types.Version{Lineage: lineageCounter.Add(1)},
	}
	sb.syncMetas()
	return sb
}

// Load reads a file into the buffer, replacing existing content. The buffer
// starts a new lineage: versions from before the load are unrelated to
// versions after it.
func (sb *SliceBuffer) Load(filePath string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.modified = false

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sb.lines = [][]byte{[]byte("")}
			sb.filePath = filePath
			sb.reset()
			return nil
		}
		return fmt.Errorf("failed to open file '%s': %w", filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	newLines := [][]byte{}
	for scanner.Scan() {
		line := scanner.Bytes()
		lineCopy := make([]byte, len(line))
		copy(lineCopy, line)
		newLines = append(newLines, lineCopy)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file '%s': %w", filePath, err)
	}
	if len(newLines) == 0 {
		newLines = append(newLines, []byte(""))
	}
	sb.lines = newLines
	sb.filePath = filePath
	sb.reset()
	return nil
}

// reset starts a fresh lineage and rebuilds all line descriptors. Old
// descriptors are marked deleted so stale holders can detect the reload.
func (sb *SliceBuffer) reset() {
	for _, m := range sb.metas {
		m.markDeleted()
	}
	sb.metas = nil
	sb.version = types.Version{Lineage: lineageCounter.Add(1)}
	sb.syncMetas()
}

// bump advances the version serial after a mutation and refreshes the line
// descriptors.
func (sb *SliceBuffer) bump() {
	sb.version.Serial++
	sb.syncMetas()
}

// syncMetas brings the line descriptors in line with the current content:
// surviving descriptors keep their identity (slot index), descriptors past
// the new line count are flagged deleted, new lines get fresh descriptors.
func (sb *SliceBuffer) syncMetas() {
	offset := 0
	for i, line := range sb.lines {
		if i < len(sb.metas) {
			sb.metas[i].update(i, offset, len(line))
		} else {
			m := &Line{}
			m.update(i, offset, len(line))
			sb.metas = append(sb.metas, m)
		}
		offset += len(line) + 1 // +1 for the newline separator
	}
	if len(sb.metas) > len(sb.lines) {
		for _, m := range sb.metas[len(sb.lines):] {
			m.markDeleted()
		}
		sb.metas = sb.metas[:len(sb.lines)]
	}
}

// Version returns the token identifying the current buffer state.
func (sb *SliceBuffer) Version() types.Version {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.version
}

// LineByNumber returns the live descriptor for line n, or nil when n is out
// of range.
func (sb *SliceBuffer) LineByNumber(n int) *Line {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	if n < 0 || n >= len(sb.metas) {
		return nil
	}
	return sb.metas[n]
}

// Snapshot returns the full buffer text joined with newlines. The returned
// string is immutable; concurrent edits produce new snapshots, never mutate
// old ones.
func (sb *SliceBuffer) Snapshot(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return string(sb.join()), nil
}

// Lines returns the raw line slices. Callers must not mutate them.
func (sb *SliceBuffer) Lines() [][]byte {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.lines
}

// LineCount returns the number of lines in the buffer.
func (sb *SliceBuffer) LineCount() int {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return len(sb.lines)
}

// Line returns the content of line index.
func (sb *SliceBuffer) Line(index int) ([]byte, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	if index < 0 || index >= len(sb.lines) {
		return nil, fmt.Errorf("line index %d out of bounds (0-%d)", index, len(sb.lines)-1)
	}
	return sb.lines[index], nil
}

// Bytes returns the whole buffer content with newline separators.
func (sb *SliceBuffer) Bytes() []byte {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.join()
}

// join concatenates the lines. Callers must hold sb.mu.
func (sb *SliceBuffer) join() []byte {
	var buffer bytes.Buffer
	for i, line := range sb.lines {
		buffer.Write(line)
		if i < len(sb.lines)-1 {
			buffer.WriteByte('\n')
		}
	}
	return buffer.Bytes()
}

// FilePath returns the path the buffer was loaded from.
func (sb *SliceBuffer) FilePath() string {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.filePath
}

// IsModified returns true if the buffer has unsaved changes.
func (sb *SliceBuffer) IsModified() bool {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.modified
}

// clampPosition clamps pos to a valid line index and byte column.
func (sb *SliceBuffer) clampPosition(pos types.Position) types.Position {
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= len(sb.lines) {
		pos.Line = len(sb.lines) - 1
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	if l := len(sb.lines[pos.Line]); pos.Col > l {
		pos.Col = l
	}
	return pos
}

// Insert inserts text at a given position. Handles single and multi-line
// insertions; the version is bumped once for the whole edit.
func (sb *SliceBuffer) Insert(pos types.Position, text []byte) error {
	if len(text) == 0 {
		return nil
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	pos = sb.clampPosition(pos)
	sb.modified = true

	currentLine := sb.lines[pos.Line]
	insertLines := bytes.Split(text, []byte("\n"))

	tail := make([]byte, len(currentLine[pos.Col:]))
	copy(tail, currentLine[pos.Col:])

	head := make([]byte, pos.Col, pos.Col+len(insertLines[0]))
	copy(head, currentLine[:pos.Col])
	sb.lines[pos.Line] = append(head, insertLines[0]...)

	if len(insertLines) > 1 {
		newLines := make([][]byte, len(insertLines)-1)
		for i := 1; i < len(insertLines); i++ {
			lineCopy := make([]byte, len(insertLines[i]))
			copy(lineCopy, insertLines[i])
			newLines[i-1] = lineCopy
		}
		newLines[len(newLines)-1] = append(newLines[len(newLines)-1], tail...)
		rest := make([][]byte, len(sb.lines[pos.Line+1:]))
		copy(rest, sb.lines[pos.Line+1:])
		sb.lines = append(sb.lines[:pos.Line+1], append(newLines, rest...)...)
	} else {
		sb.lines[pos.Line] = append(sb.lines[pos.Line], tail...)
	}

	sb.bump()
	return nil
}

// Delete removes text within the given range (start inclusive, end
// exclusive).
func (sb *SliceBuffer) Delete(start, end types.Position) error {
	if start == end {
		return nil
	}
	// Ensure start <= end.
	if start.Line > end.Line || (start.Line == end.Line && start.Col > end.Col) {
		start, end = end, start
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	start = sb.clampPosition(start)
	end = sb.clampPosition(end)
	if start == end {
		return nil
	}

	sb.modified = true

	if start.Line == end.Line {
		line := sb.lines[start.Line]
		sb.lines[start.Line] = append(line[:start.Col], line[end.Col:]...)
	} else {
		startPart := sb.lines[start.Line][:start.Col]
		endPart := sb.lines[end.Line][end.Col:]
		sb.lines[start.Line] = append(startPart, endPart...)

		if end.Line+1 >= len(sb.lines) {
			sb.lines = sb.lines[:start.Line+1]
		} else {
			sb.lines = append(sb.lines[:start.Line+1], sb.lines[end.Line+1:]...)
		}
	}

	// Buffer always has at least one line.
	if len(sb.lines) == 0 {
		sb.lines = [][]byte{[]byte("")}
	}

	sb.bump()
	return nil
}

// Ensure SliceBuffer satisfies the Buffer interface.
var _ Buffer = (*SliceBuffer)(nil)
