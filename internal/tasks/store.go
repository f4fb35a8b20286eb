// Package tasks owns the ordered list of tasks and dividers.
//
// Every mutator works on the in-memory list, writes the whole list through
// to a single settings slot, and reports whether anything changed. Failures
// to persist are logged and swallowed: the in-memory list stays
// authoritative for the life of the process and the next successful write
// reconciles durable state.
package tasks

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dori/sticky/internal/model"
	"github.com/google/uuid"
)

// StorageKey is the settings slot holding the serialized list
const StorageKey = "sticky.entries"

// Settings is a durable key/value slot. *db.DB satisfies it.
// Get returns nil, nil for an absent key.
type Settings interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// ImageDeleter removes an image file. *images.Store satisfies it.
type ImageDeleter interface {
	Delete(filename string)
}

// Options configures a Store
type Options struct {
	// CascadeImages deletes a task's image file when the task is deleted
	// or its image is replaced. Off by default: image filenames are weak
	// references and files are left behind.
	CascadeImages bool
	Images        ImageDeleter

	// OnChange is called with a fresh snapshot after every effective
	// mutation. It runs while the store is locked and must not call back
	// into the store.
	OnChange func([]model.Entry)

	Logger *slog.Logger

	// Now and NewID exist for tests; nil selects time.Now and uuid.NewString
	Now   func() time.Time
	NewID func() string
}

// Store is the ordered task list
type Store struct {
	mu      sync.Mutex
	entries []model.Entry

	settings Settings
	cascade  bool
	images   ImageDeleter
	onChange func([]model.Entry)
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// New creates a store and loads the saved list from settings. A missing or
// unreadable payload yields an empty list.
func New(settings Settings, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	s := &Store{
		settings: settings,
		cascade:  opts.CascadeImages && opts.Images != nil,
		images:   opts.Images,
		onChange: opts.OnChange,
		logger:   opts.Logger,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	s.entries = s.load()
	return s
}

// Entries returns a snapshot of the list in display order
func (s *Store) Entries() []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len returns the number of entries, dividers included
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Get returns the entry with the given id
func (s *Store) Get(id string) (model.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return s.entries[i], true
}

// TaskCount returns the number of tasks. Dividers never count.
func (s *Store) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.entries {
		if !e.IsDivider() {
			count++
		}
	}
	return count
}

// CompletedCount returns the number of tasks marked done
func (s *Store) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.entries {
		if t, ok := e.(model.Task); ok && t.Done {
			count++
		}
	}
	return count
}

// RemainingCount returns the number of tasks not yet done
func (s *Store) RemainingCount() int {
	return s.TaskCount() - s.CompletedCount()
}

// AddTask inserts a new task at the front of the list
func (s *Store) AddTask(title string) (string, bool) {
	return s.AddTaskWithImage(title, "")
}

// AddTaskWithImage inserts a new task at the front of the list with an
// optional image filename. The title is trimmed; an empty title is a no-op.
func (s *Store) AddTaskWithImage(title, imageFilename string) (string, bool) {
	trimmed, ok := normalizeTitle(title)
	if !ok {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Task{
		ID:            s.newID(),
		Title:         trimmed,
		ImageFilename: imageFilename,
		CreatedAt:     s.now(),
	}
	s.insert(0, t)
	s.commit()
	return t.ID, true
}

// AddDivider inserts a divider at the given position. An empty title falls
// back to model.DefaultDividerTitle. Inserting above a missing entry is a
// no-op.
func (s *Store) AddDivider(title string, at Position) (string, bool) {
	trimmed, ok := normalizeTitle(title)
	if !ok {
		trimmed = model.DefaultDividerTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, ok := at.resolve(s)
	if !ok {
		return "", false
	}

	d := model.Divider{
		ID:        s.newID(),
		Title:     trimmed,
		CreatedAt: s.now(),
	}
	s.insert(index, d)
	s.commit()
	return d.ID, true
}

// ToggleDone flips a task's done flag. Marking a task done clears in-progress.
func (s *Store) ToggleDone(id string) bool {
	return s.updateTask(id, func(t *model.Task) bool {
		t.Done = !t.Done
		if t.Done {
			t.InProgress = false
		}
		return true
	})
}

// SetInProgress sets a task's in-progress flag. Setting it clears done.
func (s *Store) SetInProgress(id string, inProgress bool) bool {
	return s.updateTask(id, func(t *model.Task) bool {
		if t.InProgress == inProgress {
			return false
		}
		t.InProgress = inProgress
		if inProgress {
			t.Done = false
		}
		return true
	})
}

// SetImportant sets a task's important flag
func (s *Store) SetImportant(id string, important bool) bool {
	return s.updateTask(id, func(t *model.Task) bool {
		if t.Important == important {
			return false
		}
		t.Important = important
		return true
	})
}

// UpdateImage attaches an image filename to a task, or clears it when
// filename is empty. The previous file is only removed with CascadeImages.
func (s *Store) UpdateImage(id, filename string) bool {
	var replaced string
	changed := s.updateTask(id, func(t *model.Task) bool {
		if t.ImageFilename == filename {
			return false
		}
		replaced = t.ImageFilename
		t.ImageFilename = filename
		return true
	})
	if changed && replaced != "" {
		s.release(replaced)
	}
	return changed
}

// UpdateTitle renames a task or divider. The title is trimmed; an empty
// title is a no-op.
func (s *Store) UpdateTitle(id, title string) bool {
	trimmed, ok := normalizeTitle(title)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	switch e := s.entries[i].(type) {
	case model.Task:
		if e.Title == trimmed {
			return false
		}
		e.Title = trimmed
		s.entries[i] = e
	case model.Divider:
		if e.Title == trimmed {
			return false
		}
		e.Title = trimmed
		s.entries[i] = e
	}
	s.commit()
	return true
}

// Delete removes the entry with the given id. Deleting an absent id is a
// no-op.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()

	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}

	removed := s.entries[i]
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.commit()
	s.mu.Unlock()

	if t, ok := removed.(model.Task); ok && t.HasImage() {
		s.release(t.ImageFilename)
	}
	return true
}

// ClearCompleted removes every task marked done and returns how many were
// removed. Dividers are always kept.
func (s *Store) ClearCompleted() int {
	s.mu.Lock()

	var orphaned []string
	kept := s.entries[:0]
	for _, e := range s.entries {
		if t, ok := e.(model.Task); ok && t.Done {
			if t.HasImage() {
				orphaned = append(orphaned, t.ImageFilename)
			}
			continue
		}
		kept = append(kept, e)
	}

	removed := len(s.entries) - len(kept)
	// Drop references held past the new length
	clear(s.entries[len(kept):])
	s.entries = kept
	if removed > 0 {
		s.commit()
	}
	s.mu.Unlock()

	for _, filename := range orphaned {
		s.release(filename)
	}
	return removed
}

// MoveTask moves the source entry so it occupies the target's index. The
// target and everything between shift one slot toward the source's old
// position. Moving an entry onto itself or a missing id is a no-op.
func (s *Store) MoveTask(sourceID, targetID string) bool {
	if sourceID == targetID {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.indexOf(sourceID)
	to := s.indexOf(targetID)
	if from < 0 || to < 0 {
		return false
	}

	item := s.entries[from]
	s.entries = append(s.entries[:from], s.entries[from+1:]...)
	s.insert(to, item)
	s.commit()
	return true
}

func (s *Store) updateTask(id string, fn func(*model.Task) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	t, ok := s.entries[i].(model.Task)
	if !ok {
		return false
	}
	if !fn(&t) {
		return false
	}
	s.entries[i] = t
	s.commit()
	return true
}

func (s *Store) insert(index int, e model.Entry) {
	s.entries = append(s.entries, nil)
	copy(s.entries[index+1:], s.entries[index:])
	s.entries[index] = e
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.entries {
		if e.EntryID() == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []model.Entry {
	out := make([]model.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// commit persists the list and notifies the listener. Callers hold mu.
func (s *Store) commit() {
	s.save()
	if s.onChange != nil {
		s.onChange(s.snapshot())
	}
}

// release deletes filename when cascading is enabled and no remaining entry
// references it. Callers must not hold mu.
func (s *Store) release(filename string) {
	if !s.cascade {
		return
	}

	s.mu.Lock()
	shared := s.referenced(filename)
	s.mu.Unlock()
	if shared {
		return
	}

	s.logger.Debug("deleting unreferenced image", "filename", filename)
	s.images.Delete(filename)
}

func (s *Store) referenced(filename string) bool {
	for _, e := range s.entries {
		if t, ok := e.(model.Task); ok && t.ImageFilename == filename {
			return true
		}
	}
	return false
}

func normalizeTitle(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	return trimmed, trimmed != ""
}
