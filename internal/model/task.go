package model

import (
	"time"
)

// Status is the display state of a task, derived from its flags
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// DefaultDividerTitle is used when a divider is created without a title
const DefaultDividerTitle = "New section"

// Entry is one element of the ordered list: either a Task or a Divider.
// The set of implementations is closed to this package.
type Entry interface {
	EntryID() string
	EntryTitle() string
	EntryCreatedAt() time.Time
	IsDivider() bool

	entry()
}

// Task represents an actionable todo item
type Task struct {
	ID            string
	Title         string
	Done          bool
	InProgress    bool
	Important     bool
	ImageFilename string // empty when no image is attached
	CreatedAt     time.Time
}

func (t Task) EntryID() string           { return t.ID }
func (t Task) EntryTitle() string        { return t.Title }
func (t Task) EntryCreatedAt() time.Time { return t.CreatedAt }
func (t Task) IsDivider() bool           { return false }
func (Task) entry()                      {}

// HasImage returns true if an image file is attached
func (t Task) HasImage() bool {
	return t.ImageFilename != ""
}

// Status returns the task's display status
func (t Task) Status() Status {
	switch {
	case t.Done:
		return StatusDone
	case t.InProgress:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// Divider is a section separator. It carries no task state.
type Divider struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

func (d Divider) EntryID() string           { return d.ID }
func (d Divider) EntryTitle() string        { return d.Title }
func (d Divider) EntryCreatedAt() time.Time { return d.CreatedAt }
func (d Divider) IsDivider() bool           { return true }
func (Divider) entry()                      {}
