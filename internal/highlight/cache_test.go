package highlight

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/shade/internal/buffer"
	"github.com/bethropolis/shade/internal/classify"
	"github.com/bethropolis/shade/internal/event"
	"github.com/bethropolis/shade/internal/types"
)

var (
	styleKeyword  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleVariable = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleOperator = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleNumber   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

type staticStyles map[string]tcell.Style

func (s staticStyles) StyleFor(category string) tcell.Style {
	if st, ok := s[category]; ok {
		return st
	}
	return tcell.StyleDefault
}

func testStyles() staticStyles {
	return staticStyles{
		classify.CategoryKeyword:    styleKeyword,
		classify.CategoryIdentifier: styleVariable,
		classify.CategoryOperator:   styleOperator,
		classify.CategoryNumber:     styleNumber,
	}
}

// recordingClassifier counts invocations and delegates span production to fn.
type recordingClassifier struct {
	mu    sync.Mutex
	calls int
	fn    func(text string, offset, length int) []classify.Span
}

func (r *recordingClassifier) Spans(ctx context.Context, text string, offset, length int) ([]classify.Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.fn(text, offset, length), nil
}

func (r *recordingClassifier) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// intAssignSpans classifies lines shaped like "int x = 1;".
func intAssignSpans(text string, offset, length int) []classify.Span {
	if text[offset:offset+length] != "int x = 1;" {
		return nil
	}
	return []classify.Span{
		{Offset: offset + 0, Length: 3, Category: classify.CategoryKeyword},
		{Offset: offset + 4, Length: 1, Category: classify.CategoryIdentifier},
		{Offset: offset + 6, Length: 1, Category: classify.CategoryOperator},
		{Offset: offset + 8, Length: 1, Category: classify.CategoryNumber},
	}
}

// notifications collects LinesChanged events.
type notifications struct {
	mu     sync.Mutex
	ranges []types.LineRange
}

func captureLineEvents(events *event.Manager) *notifications {
	n := &notifications{}
	events.Subscribe(event.TypeLinesChanged, func(e event.Event) bool {
		data := e.Data.(event.LinesChangedData)
		n.mu.Lock()
		n.ranges = append(n.ranges, data.Range)
		n.mu.Unlock()
		return true
	})
	return n
}

func (n *notifications) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.ranges)
}

func (n *notifications) all() []types.LineRange {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]types.LineRange, len(n.ranges))
	copy(out, n.ranges)
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestEngine(t *testing.T, buf *buffer.SliceBuffer, cls classify.Classifier) (*Cache, *notifications) {
	t.Helper()
	events := event.NewManager()
	notifs := captureLineEvents(events)
	cache := NewCache(buf, cls, testStyles(), events, Options{Debounce: -1, Workers: 2})
	t.Cleanup(cache.Dispose)
	return cache, notifs
}

func loadBuffer(t *testing.T, lines ...string) *buffer.SliceBuffer {
	t.Helper()
	sb := buffer.NewSliceBuffer()
	if err := sb.Insert(types.Position{}, []byte(strings.Join(lines, "\n"))); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return sb
}

func TestEndToEndPublish(t *testing.T) {
	buf := loadBuffer(t, "int x = 1;", "x = 2;")
	cls := &recordingClassifier{fn: intAssignSpans}
	cache, notifs := newTestEngine(t, buf, cls)

	// First request: synchronous, seeded empty, schedules recomputation.
	seed := cache.StylesForLine(0)
	if len(seed) != 0 {
		t.Fatalf("first request should return an empty seed, got %+v", seed)
	}

	want := []types.Section{
		{Offset: 0, Length: 3, Style: styleKeyword},
		{Offset: 4, Length: 1, Style: styleVariable},
		{Offset: 6, Length: 1, Style: styleOperator},
		{Offset: 8, Length: 1, Style: styleNumber},
	}
	waitFor(t, "publish of line 0", func() bool {
		return reflect.DeepEqual(cache.StylesForLine(0), want)
	})

	if got := notifs.all(); len(got) != 1 || got[0] != (types.LineRange{First: 0, Last: 0}) {
		t.Errorf("notifications = %+v, want exactly one for [0,0]", got)
	}
}

func TestCacheHitIsIdempotent(t *testing.T) {
	buf := loadBuffer(t, "int x = 1;")
	cls := &recordingClassifier{fn: intAssignSpans}
	cache, notifs := newTestEngine(t, buf, cls)

	cache.StylesForLine(0)
	waitFor(t, "initial publish", func() bool { return len(cache.StylesForLine(0)) == 4 })

	first := cache.StylesForLine(0)
	calls := cls.callCount()
	for i := 0; i < 10; i++ {
		if got := cache.StylesForLine(0); !reflect.DeepEqual(got, first) {
			t.Fatalf("hit %d returned %+v, want %+v", i, got, first)
		}
	}

	// Repeated hits schedule no work and raise no events.
	time.Sleep(20 * time.Millisecond)
	if cls.callCount() != calls {
		t.Errorf("classifier calls grew from %d to %d on cache hits", calls, cls.callCount())
	}
	if notifs.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifs.count())
	}
}

func TestInvalidationOnEdit(t *testing.T) {
	buf := loadBuffer(t, "int x = 1;")
	cls := &recordingClassifier{fn: intAssignSpans}
	cache, notifs := newTestEngine(t, buf, cls)

	cache.StylesForLine(0)
	waitFor(t, "initial publish", func() bool { return len(cache.StylesForLine(0)) == 4 })

	// The edit truncates the line; the classifier finds nothing in it.
	if err := buf.Delete(types.Position{Line: 0, Col: 3}, types.Position{Line: 0, Col: 10}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Immediate, non-blocking answer seeded from the old result, clipped.
	seed := cache.StylesForLine(0)
	for _, s := range seed {
		if s.End() > 3 {
			t.Errorf("seed section %+v exceeds the shrunk line", s)
		}
	}

	waitFor(t, "recomputation after edit", func() bool { return len(cache.StylesForLine(0)) == 0 })
	if notifs.count() != 2 {
		t.Errorf("notifications = %d, want 2 (initial publish + changed result)", notifs.count())
	}
}

func TestNoStaleOverwrite(t *testing.T) {
	buf := loadBuffer(t, "old 1")
	gate := make(chan struct{})
	t.Cleanup(func() {
		select {
		case <-gate:
		default:
			close(gate)
		}
	})

	staleSpan := classify.Span{Offset: 0, Length: 3, Category: classify.CategoryKeyword}
	freshSpan := classify.Span{Offset: 0, Length: 3, Category: classify.CategoryNumber}
	cls := classify.Func(func(ctx context.Context, text string, offset, length int) ([]classify.Span, error) {
		if strings.HasPrefix(text, "old") {
			// Hold the stale computation until the test releases it;
			// completing normally afterwards must still publish nothing.
			select {
			case <-gate:
			case <-time.After(5 * time.Second):
			}
			return []classify.Span{staleSpan}, nil
		}
		return []classify.Span{{Offset: offset, Length: freshSpan.Length, Category: freshSpan.Category}}, nil
	})
	cache, notifs := newTestEngine(t, buf, cls)

	cache.StylesForLine(0) // recomputation for the old content, now blocked

	if err := buf.Insert(types.Position{}, []byte("new ")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	cache.StylesForLine(0) // supersedes the blocked entry

	want := []types.Section{{Offset: 0, Length: 3, Style: styleNumber}}
	waitFor(t, "fresh publish", func() bool {
		return reflect.DeepEqual(cache.StylesForLine(0), want)
	})

	close(gate)
	time.Sleep(30 * time.Millisecond) // let the stale task run to completion

	if got := cache.StylesForLine(0); !reflect.DeepEqual(got, want) {
		t.Errorf("stale result overwrote the slot: %+v", got)
	}
	if notifs.count() != 1 {
		t.Errorf("notifications = %d, want 1 (stale completion must stay silent)", notifs.count())
	}
}

func TestSeedClippingOnShrink(t *testing.T) {
	buf := loadBuffer(t, "abcdefghij")
	cls := &recordingClassifier{fn: func(text string, offset, length int) []classify.Span {
		if length < 9 {
			return nil
		}
		return []classify.Span{
			{Offset: offset, Length: 3, Category: classify.CategoryKeyword},
			{Offset: offset + 5, Length: 4, Category: classify.CategoryNumber},
		}
	}}
	cache, _ := newTestEngine(t, buf, cls)

	cache.StylesForLine(0)
	waitFor(t, "initial publish", func() bool { return len(cache.StylesForLine(0)) == 2 })

	// Shrink the line from 10 to 4 bytes.
	if err := buf.Delete(types.Position{Line: 0, Col: 4}, types.Position{Line: 0, Col: 10}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	seed := cache.StylesForLine(0)
	if len(seed) != 1 {
		t.Fatalf("seed = %+v, want only the section that still fits", seed)
	}
	if seed[0].End() > 4 {
		t.Errorf("seed section %+v exceeds new line length 4", seed[0])
	}
}

func TestChangeSuppression(t *testing.T) {
	buf := loadBuffer(t, "int x = 1;", "x = 2;")
	cls := &recordingClassifier{fn: intAssignSpans}
	cache, notifs := newTestEngine(t, buf, cls)

	cache.StylesForLine(0)
	waitFor(t, "initial publish", func() bool { return len(cache.StylesForLine(0)) == 4 })
	calls := cls.callCount()

	// Edit line 1 only: line 0's bounds and content are untouched, so the
	// recomputation yields a structurally identical result.
	if err := buf.Insert(types.Position{Line: 1, Col: 0}, []byte("y")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	cache.StylesForLine(0)

	waitFor(t, "silent recomputation", func() bool { return cls.callCount() > calls })
	time.Sleep(30 * time.Millisecond)

	if notifs.count() != 1 {
		t.Errorf("notifications = %d, want 1 (equal result must not notify)", notifs.count())
	}
}

// switchableStyles is a StyleResolver whose mapping can change mid-test,
// standing in for a theme switch.
type switchableStyles struct {
	mu sync.Mutex
	m  staticStyles
}

func (s *switchableStyles) StyleFor(category string) tcell.Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.StyleFor(category)
}

func (s *switchableStyles) set(category string, style tcell.Style) {
	s.mu.Lock()
	s.m[category] = style
	s.mu.Unlock()
}

func TestThemeChangeRestylesPublishedLines(t *testing.T) {
	buf := loadBuffer(t, "int x = 1;")
	cls := &recordingClassifier{fn: intAssignSpans}
	events := event.NewManager()
	notifs := captureLineEvents(events)
	styles := &switchableStyles{m: testStyles()}
	cache := NewCache(buf, cls, styles, events, Options{Debounce: -1, Workers: 2})
	t.Cleanup(cache.Dispose)

	cache.StylesForLine(0)
	waitFor(t, "initial publish", func() bool { return len(cache.StylesForLine(0)) == 4 })
	before := cache.StylesForLine(0)

	// Swap the keyword style and announce a theme change. No buffer edit:
	// the version is still equivalent, yet the published colors are stale.
	restyled := tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styles.set(classify.CategoryKeyword, restyled)
	events.Dispatch(event.TypeThemeChanged, event.ThemeChangedData{Name: "other"})

	// The next request still answers synchronously with the old colors.
	if seed := cache.StylesForLine(0); !reflect.DeepEqual(seed, before) {
		t.Errorf("seed after theme change = %+v, want previous result %+v", seed, before)
	}

	waitFor(t, "restyled publish", func() bool {
		got := cache.StylesForLine(0)
		return len(got) == 4 && got[0].Style == restyled
	})
	if notifs.count() != 2 {
		t.Errorf("notifications = %d, want 2 (initial publish + restyle)", notifs.count())
	}
}

func TestTailTrimming(t *testing.T) {
	buf := loadBuffer(t, "l0", "l1", "l2", "l3", "l4")
	cls := &recordingClassifier{fn: func(string, int, int) []classify.Span { return nil }}
	cache, _ := newTestEngine(t, buf, cls)

	for i := 0; i < 5; i++ {
		cache.StylesForLine(i)
	}
	if cache.Len() != 5 {
		t.Fatalf("Len = %d after requesting 5 lines, want 5", cache.Len())
	}

	// Delete the last three lines.
	if err := buf.Delete(types.Position{Line: 1, Col: 2}, types.Position{Line: 4, Col: 2}); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	cache.StylesForLine(0)
	if got := cache.Len(); got > 2 {
		t.Errorf("Len = %d after trimming, want <= 2", got)
	}
}

func TestDisposeStopsService(t *testing.T) {
	buf := loadBuffer(t, "int x = 1;")
	cls := &recordingClassifier{fn: intAssignSpans}
	events := event.NewManager()
	cache := NewCache(buf, cls, testStyles(), events, Options{Debounce: -1})

	cache.StylesForLine(0)
	cache.Dispose()

	if got := cache.StylesForLine(0); got != nil {
		t.Errorf("StylesForLine after Dispose = %+v, want nil", got)
	}
	// Dispose twice is harmless.
	cache.Dispose()
}
