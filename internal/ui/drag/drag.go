// Package drag tracks a reorder gesture in the UI layer.
//
// The task store has no notion of a drag in progress. The tracker remembers
// which entry is being dragged and turns every crossing into a new target
// row into an immediate move, so the list reorders live under the pointer.
// Dropping only ends the gesture.
package drag

// State is the tracker's gesture state
type State int

const (
	Idle State = iota
	Dragging
)

// String returns the display name for a state
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Mover reorders entries by id. *tasks.Store satisfies it.
type Mover interface {
	MoveTask(sourceID, targetID string) bool
}

// Tracker holds the drag source while a gesture is active.
// The zero value is idle.
type Tracker struct {
	source string
	state  State
}

// Begin marks sourceID as the entry being dragged. Beginning while already
// dragging replaces the source.
func (t *Tracker) Begin(sourceID string) {
	if sourceID == "" {
		return
	}
	t.source = sourceID
	t.state = Dragging
}

// Enter is called when the gesture crosses into targetID's row. It moves the
// source onto the target right away and reports whether the list changed.
func (t *Tracker) Enter(targetID string, m Mover) bool {
	if t.state != Dragging || targetID == t.source {
		return false
	}
	return m.MoveTask(t.source, targetID)
}

// Drop ends the gesture. The moves already happened during Enter, so the
// store is not touched.
func (t *Tracker) Drop() {
	t.source = ""
	t.state = Idle
}

// Cancel abandons the gesture. Moves made so far are kept.
func (t *Tracker) Cancel() {
	t.Drop()
}

// State returns the current gesture state
func (t *Tracker) State() State {
	return t.state
}

// Source returns the dragged entry's id while dragging
func (t *Tracker) Source() (string, bool) {
	return t.source, t.state == Dragging
}

// IsDragging reports whether id is the entry being dragged
func (t *Tracker) IsDragging(id string) bool {
	return t.state == Dragging && t.source == id
}
