package model

import (
	"time"
)

// Record is the persisted shape of an Entry. Fields added after the first
// release decode to their zero value when absent from older payloads.
type Record struct {
	ID            string    `json:"id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	IsDone        bool      `json:"isDone" yaml:"isDone"`
	IsInProgress  bool      `json:"isInProgress" yaml:"isInProgress"`
	IsDivider     bool      `json:"isDivider" yaml:"isDivider"`
	IsImportant   bool      `json:"isImportant" yaml:"isImportant"`
	ImageFilename *string   `json:"imageFilename,omitempty" yaml:"imageFilename,omitempty"`
	CreatedAt     time.Time `json:"createdAt" yaml:"createdAt"`
}

// RecordOf converts an entry to its persisted form
func RecordOf(e Entry) Record {
	switch v := e.(type) {
	case Task:
		r := Record{
			ID:           v.ID,
			Title:        v.Title,
			IsDone:       v.Done,
			IsInProgress: v.InProgress,
			IsImportant:  v.Important,
			CreatedAt:    v.CreatedAt,
		}
		if v.ImageFilename != "" {
			name := v.ImageFilename
			r.ImageFilename = &name
		}
		return r
	case Divider:
		return Record{
			ID:        v.ID,
			Title:     v.Title,
			IsDivider: true,
			CreatedAt: v.CreatedAt,
		}
	}
	return Record{}
}

// Entry converts a record back to a Task or Divider. Task-only fields on a
// divider record are dropped.
func (r Record) Entry() Entry {
	if r.IsDivider {
		return Divider{
			ID:        r.ID,
			Title:     r.Title,
			CreatedAt: r.CreatedAt,
		}
	}

	t := Task{
		ID:         r.ID,
		Title:      r.Title,
		Done:       r.IsDone,
		InProgress: r.IsInProgress,
		Important:  r.IsImportant,
		CreatedAt:  r.CreatedAt,
	}
	if r.ImageFilename != nil {
		t.ImageFilename = *r.ImageFilename
	}
	// Older payloads could carry both flags; done wins.
	if t.Done {
		t.InProgress = false
	}
	return t
}

// Records converts a list of entries, preserving order
func Records(entries []Entry) []Record {
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, RecordOf(e))
	}
	return records
}
