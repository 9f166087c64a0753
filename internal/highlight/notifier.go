// internal/highlight/notifier.go
package highlight

import (
	"github.com/bethropolis/shade/internal/event"
	"github.com/bethropolis/shade/internal/types"
)

// Notifier compares a freshly published result against the previous one and
// dispatches a TypeLinesChanged event only on an observable difference. It
// holds no state of its own.
type Notifier struct {
	events *event.Manager
}

// NewNotifier creates a notifier dispatching on the given event manager.
func NewNotifier(events *event.Manager) *Notifier {
	return &Notifier{events: events}
}

// NotifyIfChanged fires a single-line changed event unless old and new are
// structurally equal. Returns whether an event was dispatched.
func (n *Notifier) NotifyIfChanged(line int, old, updated []types.Section) bool {
	if sectionsEqual(old, updated) {
		return false
	}
	n.NotifyChanged(line)
	return true
}

// NotifyChanged unconditionally fires a changed event for one line; used
// when there is no prior result to compare against.
func (n *Notifier) NotifyChanged(line int) {
	if n.events == nil {
		return
	}
	n.events.Dispatch(event.TypeLinesChanged, event.LinesChangedData{
		Range: types.LineRange{First: line, Last: line},
	})
}

// sectionsEqual reports structural equality: same count and the same
// (style, offset, length) triple at every index. Reorderings count as
// changes.
func sectionsEqual(a, b []types.Section) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
