package tasks

import (
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dori/sticky/internal/db"
	"github.com/dori/sticky/internal/model"
)

// memSettings is an in-memory Settings with injectable failures
type memSettings struct {
	data   map[string][]byte
	getErr error
	setErr error
	writes int
}

func newMemSettings() *memSettings {
	return &memSettings{data: make(map[string][]byte)}
}

func (m *memSettings) Get(key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[key], nil
}

func (m *memSettings) Set(key string, value []byte) error {
	m.writes++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

type recordingDeleter struct {
	deleted []string
}

func (r *recordingDeleter) Delete(filename string) {
	r.deleted = append(r.deleted, filename)
}

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// newSeededStore returns a store whose saved list is exactly entries
func newSeededStore(t *testing.T, opts Options, entries ...model.Entry) (*Store, *memSettings) {
	t.Helper()

	settings := newMemSettings()
	if len(entries) > 0 {
		data, err := Encode(entries)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		settings.data[StorageKey] = data
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return testTime }
	}
	if opts.NewID == nil {
		opts.NewID = sequentialIDs()
	}
	return New(settings, opts), settings
}

func task(id string) model.Task {
	return model.Task{ID: id, Title: "Task " + id, CreatedAt: testTime}
}

func divider(id string) model.Divider {
	return model.Divider{ID: id, Title: "Section " + id, CreatedAt: testTime}
}

func ids(entries []model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.EntryID()
	}
	return out
}

func mustTask(t *testing.T, s *Store, id string) model.Task {
	t.Helper()

	e, ok := s.Get(id)
	if !ok {
		t.Fatalf("Entry %s not found", id)
	}
	tk, ok := e.(model.Task)
	if !ok {
		t.Fatalf("Entry %s is %T, not a task", id, e)
	}
	return tk
}

func TestAddTaskPrependsTrimmedTask(t *testing.T) {
	s, _ := newSeededStore(t, Options{}, task("A"))

	id, ok := s.AddTask("  Buy milk \n")
	if !ok {
		t.Fatal("Expected task to be added")
	}

	entries := s.Entries()
	if got := ids(entries); !reflect.DeepEqual(got, []string{id, "A"}) {
		t.Fatalf("Expected new task at front, got %v", got)
	}

	added := mustTask(t, s, id)
	if added.Title != "Buy milk" {
		t.Errorf("Expected trimmed title, got %q", added.Title)
	}
	if added.Done || added.InProgress || added.Important || added.HasImage() {
		t.Errorf("Expected all flags false, got %+v", added)
	}
	if !added.CreatedAt.Equal(testTime) {
		t.Errorf("Expected createdAt %v, got %v", testTime, added.CreatedAt)
	}
}

func TestAddTaskWithImage(t *testing.T) {
	s, _ := newSeededStore(t, Options{})

	id, ok := s.AddTaskWithImage("Receipt", "r.jpg")
	if !ok {
		t.Fatal("Expected task to be added")
	}
	if got := mustTask(t, s, id).ImageFilename; got != "r.jpg" {
		t.Errorf("Expected image r.jpg, got %q", got)
	}
}

func TestEmptyTitlesAreNoops(t *testing.T) {
	s, settings := newSeededStore(t, Options{}, task("A"), task("B"))
	before := s.Entries()

	for _, title := range []string{"", "   ", "\t\n"} {
		if _, ok := s.AddTask(title); ok {
			t.Errorf("AddTask(%q) should be a no-op", title)
		}
		if s.UpdateTitle("A", title) {
			t.Errorf("UpdateTitle(%q) should be a no-op", title)
		}
	}

	if !reflect.DeepEqual(before, s.Entries()) {
		t.Errorf("Expected list unchanged, got %v", s.Entries())
	}
	if settings.writes != 0 {
		t.Errorf("Expected no writes, got %d", settings.writes)
	}
}

func TestUpdateTitle(t *testing.T) {
	s, _ := newSeededStore(t, Options{}, task("A"), divider("D"))

	if !s.UpdateTitle("A", "  Renamed  ") {
		t.Fatal("Expected rename to succeed")
	}
	if got := mustTask(t, s, "A").Title; got != "Renamed" {
		t.Errorf("Expected trimmed title, got %q", got)
	}

	if !s.UpdateTitle("D", "Groceries") {
		t.Fatal("Expected divider rename to succeed")
	}
	if e, _ := s.Get("D"); e.EntryTitle() != "Groceries" {
		t.Errorf("Expected divider title Groceries, got %q", e.EntryTitle())
	}

	if s.UpdateTitle("A", "Renamed") {
		t.Error("Expected identical title to be a no-op")
	}
	if s.UpdateTitle("missing", "x") {
		t.Error("Expected missing id to be a no-op")
	}
}

func TestToggleDoneClearsInProgress(t *testing.T) {
	s, _ := newSeededStore(t, Options{}, task("A"))

	s.SetInProgress("A", true)
	if !s.ToggleDone("A") {
		t.Fatal("Expected toggle to succeed")
	}

	a := mustTask(t, s, "A")
	if !a.Done || a.InProgress {
		t.Errorf("Expected done and not in progress, got %+v", a)
	}

	s.ToggleDone("A")
	a = mustTask(t, s, "A")
	if a.Done || a.InProgress {
		t.Errorf("Expected pending after second toggle, got %+v", a)
	}
}

func TestSetInProgressClearsDone(t *testing.T) {
	s, _ := newSeededStore(t, Options{}, task("A"))

	s.ToggleDone("A")
	if !s.SetInProgress("A", true) {
		t.Fatal("Expected in-progress to be set")
	}

	a := mustTask(t, s, "A")
	if a.Done || !a.InProgress {
		t.Errorf("Expected in progress and not done, got %+v", a)
	}

	if s.SetInProgress("A", true) {
		t.Error("Expected repeated set to be a no-op")
	}
	if !s.SetInProgress("A", false) {
		t.Error("Expected clearing in-progress to succeed")
	}
	if a := mustTask(t, s, "A"); a.Done {
		t.Error("Clearing in-progress must not mark done")
	}
}

func TestSetImportant(t *testing.T) {
	s, _ := newSeededStore(t, Options{}, task("A"))

	if !s.SetImportant("A", true) {
		t.Fatal("Expected important to be set")
	}
	if !mustTask(t, s, "A").Important {
		t.Error("Expected task to be important")
	}
	if s.SetImportant("A", true) {
		t.Error("Expected repeated set to be a no-op")
	}
}

func TestTaskOperationsIgnoreDividersAndMissingIDs(t *testing.T) {
	s, settings := newSeededStore(t, Options{}, divider("D"))

	for _, id := range []string{"D", "missing"} {
		if s.ToggleDone(id) {
			t.Errorf("ToggleDone(%s) should be a no-op", id)
		}
		if s.SetInProgress(id, true) {
			t.Errorf("SetInProgress(%s) should be a no-op", id)
		}
		if s.SetImportant(id, true) {
			t.Errorf("SetImportant(%s) should be a no-op", id)
		}
		if s.UpdateImage(id, "x.jpg") {
			t.Errorf("UpdateImage(%s) should be a no-op", id)
		}
	}

	if _, ok := s.Get("D"); !ok {
		t.Fatal("Divider should still be present")
	}
	if settings.writes != 0 {
		t.Errorf("Expected no writes, got %d", settings.writes)
	}
}

func TestMoveTask(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target string
		want   []string
		moved  bool
	}{
		{"forward", "A", "C", []string{"B", "C", "A", "D"}, true},
		{"backward", "D", "B", []string{"A", "D", "B", "C"}, true},
		{"adjacent forward", "A", "B", []string{"B", "A", "C", "D"}, true},
		{"adjacent backward", "B", "A", []string{"B", "A", "C", "D"}, true},
		{"to last", "A", "D", []string{"B", "C", "D", "A"}, true},
		{"same", "A", "A", []string{"A", "B", "C", "D"}, false},
		{"missing source", "X", "B", []string{"A", "B", "C", "D"}, false},
		{"missing target", "A", "X", []string{"A", "B", "C", "D"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSeededStore(t, Options{}, task("A"), task("B"), task("C"), task("D"))

			if got := s.MoveTask(tt.source, tt.target); got != tt.moved {
				t.Errorf("MoveTask returned %v, want %v", got, tt.moved)
			}
			if got := ids(s.Entries()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMoveTaskWithDividers(t *testing.T) {
	s, _ := newSeededStore(t, Options{}, task("A"), divider("S"), task("B"))

	s.MoveTask("S", "A")
	if got := ids(s.Entries()); !reflect.DeepEqual(got, []string{"S", "A", "B"}) {
		t.Errorf("Expected divider moved to front, got %v", got)
	}
}

func TestClearCompleted(t *testing.T) {
	done1 := task("A")
	done1.Done = true
	open := task("C")
	done2 := task("D")
	done2.Done = true
	s, _ := newSeededStore(t, Options{}, done1, divider("S"), open, done2)

	if removed := s.ClearCompleted(); removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}
	if got := ids(s.Entries()); !reflect.DeepEqual(got, []string{"S", "C"}) {
		t.Errorf("Expected [S C], got %v", got)
	}

	if removed := s.ClearCompleted(); removed != 0 {
		t.Errorf("Expected nothing left to clear, got %d", removed)
	}
}

func TestAddDividerPositions(t *testing.T) {
	t.Run("above", func(t *testing.T) {
		s, _ := newSeededStore(t, Options{}, task("A"), task("B"), task("C"))

		id, ok := s.AddDivider("Later", Above("B"))
		if !ok {
			t.Fatal("Expected divider to be added")
		}
		if got := ids(s.Entries()); !reflect.DeepEqual(got, []string{"A", id, "B", "C"}) {
			t.Errorf("Expected divider before B, got %v", got)
		}
	})

	t.Run("above missing", func(t *testing.T) {
		s, _ := newSeededStore(t, Options{}, task("A"))

		if _, ok := s.AddDivider("Later", Above("gone")); ok {
			t.Error("Expected no-op for missing entry")
		}
		if s.Len() != 1 {
			t.Errorf("Expected list unchanged, got %d entries", s.Len())
		}
	})

	t.Run("front with default title", func(t *testing.T) {
		s, _ := newSeededStore(t, Options{}, task("A"))

		id, _ := s.AddDivider("   ", Front())
		e, _ := s.Get(id)
		if !e.IsDivider() || e.EntryTitle() != model.DefaultDividerTitle {
			t.Errorf("Expected default divider, got %+v", e)
		}
		if got := ids(s.Entries()); got[0] != id {
			t.Errorf("Expected divider at front, got %v", got)
		}
	})

	t.Run("index clamped", func(t *testing.T) {
		s, _ := newSeededStore(t, Options{}, task("A"), task("B"))

		high, _ := s.AddDivider("High", Index(99))
		low, _ := s.AddDivider("Low", Index(-5))
		mid, _ := s.AddDivider("Mid", Index(2))

		want := []string{low, "A", mid, "B", high}
		if got := ids(s.Entries()); !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, settings := newSeededStore(t, Options{}, task("A"), task("B"))

	if !s.Delete("A") {
		t.Fatal("Expected first delete to remove the entry")
	}
	after := s.Entries()
	writes := settings.writes

	if s.Delete("A") {
		t.Error("Expected second delete to be a no-op")
	}
	if !reflect.DeepEqual(after, s.Entries()) {
		t.Errorf("Expected list unchanged, got %v", ids(s.Entries()))
	}
	if settings.writes != writes {
		t.Error("Expected no write for a stale delete")
	}
}

func TestCounts(t *testing.T) {
	done := task("B")
	done.Done = true
	s, _ := newSeededStore(t, Options{}, task("A"), divider("S"), done, divider("T"))

	if got := s.TaskCount(); got != 2 {
		t.Errorf("Expected 2 tasks, got %d", got)
	}
	if got := s.CompletedCount(); got != 1 {
		t.Errorf("Expected 1 completed, got %d", got)
	}
	if got := s.RemainingCount(); got != 1 {
		t.Errorf("Expected 1 remaining, got %d", got)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	s, _ := newSeededStore(t, Options{}, task("A"), task("B"))

	snap := s.Entries()
	s.MoveTask("B", "A")
	s.Delete("A")

	if got := ids(snap); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("Snapshot changed under mutation: %v", got)
	}
}

func TestOnChangeFiresOnlyForEffectiveMutations(t *testing.T) {
	var calls int
	var last []model.Entry
	s, _ := newSeededStore(t, Options{OnChange: func(entries []model.Entry) {
		calls++
		last = entries
	}}, task("A"))

	s.AddTask("")
	s.Delete("missing")
	s.MoveTask("A", "A")
	if calls != 0 {
		t.Fatalf("Expected no notifications for no-ops, got %d", calls)
	}

	id, _ := s.AddTask("New")
	if calls != 1 {
		t.Fatalf("Expected one notification, got %d", calls)
	}
	if got := ids(last); !reflect.DeepEqual(got, []string{id, "A"}) {
		t.Errorf("Expected notification snapshot [%s A], got %v", id, got)
	}
}

func TestPersistsThroughDatabase(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "sticky.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	s := New(database, Options{})
	b, _ := s.AddTask("Second")
	a, _ := s.AddTask("First")
	s.AddDivider("Section", Above(b))
	s.ToggleDone(b)
	s.SetImportant(a, true)
	s.UpdateImage(a, "pic.jpg")
	s.SetInProgress(a, true)
	want := s.Entries()

	reloaded := New(database, Options{})
	got := reloaded.Entries()

	if len(got) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if !sameEntry(want[i], got[i]) {
			t.Errorf("Entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

// sameEntry compares entries, using Equal for timestamps since a round trip
// drops the monotonic clock reading.
func sameEntry(a, b model.Entry) bool {
	if !a.EntryCreatedAt().Equal(b.EntryCreatedAt()) {
		return false
	}
	switch av := a.(type) {
	case model.Task:
		bv, ok := b.(model.Task)
		if !ok {
			return false
		}
		av.CreatedAt, bv.CreatedAt = time.Time{}, time.Time{}
		return av == bv
	case model.Divider:
		bv, ok := b.(model.Divider)
		if !ok {
			return false
		}
		av.CreatedAt, bv.CreatedAt = time.Time{}, time.Time{}
		return av == bv
	}
	return false
}

func TestLoadFailuresStartEmpty(t *testing.T) {
	t.Run("corrupt payload", func(t *testing.T) {
		settings := newMemSettings()
		settings.data[StorageKey] = []byte("{not json")

		s := New(settings, Options{})
		if s.Len() != 0 {
			t.Errorf("Expected empty list, got %d entries", s.Len())
		}
	})

	t.Run("read error", func(t *testing.T) {
		settings := newMemSettings()
		settings.getErr = errors.New("disk on fire")

		s := New(settings, Options{})
		if s.Len() != 0 {
			t.Errorf("Expected empty list, got %d entries", s.Len())
		}
	})

	t.Run("absent", func(t *testing.T) {
		s := New(newMemSettings(), Options{})
		if s.Len() != 0 {
			t.Errorf("Expected empty list, got %d entries", s.Len())
		}
		if _, ok := s.AddTask("Works"); !ok {
			t.Error("Expected store to be usable")
		}
	})
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	s, settings := newSeededStore(t, Options{}, task("A"))
	settings.setErr = errors.New("read-only")

	id, ok := s.AddTask("Still here")
	if !ok {
		t.Fatal("Expected add to succeed despite write failure")
	}
	if _, ok := s.Get(id); !ok {
		t.Error("Expected in-memory list to keep the new task")
	}

	// Next successful write reconciles durable state
	settings.setErr = nil
	s.SetImportant(id, true)

	reloaded := New(settings, Options{})
	if got := ids(reloaded.Entries()); !reflect.DeepEqual(got, []string{id, "A"}) {
		t.Errorf("Expected reconciled list, got %v", got)
	}
}

func TestLoadLegacyPayload(t *testing.T) {
	settings := newMemSettings()
	settings.data[StorageKey] = []byte(`[
		{"id":"A","title":"Old","isDone":true,"createdAt":"2024-01-01T00:00:00Z"},
		{"id":"S","title":"Section","isDone":false,"isDivider":true,"createdAt":"2024-01-01T00:00:00Z"}
	]`)

	s := New(settings, Options{})
	if got := ids(s.Entries()); !reflect.DeepEqual(got, []string{"A", "S"}) {
		t.Fatalf("Expected [A S], got %v", got)
	}

	a := mustTask(t, s, "A")
	if !a.Done || a.InProgress || a.Important || a.HasImage() {
		t.Errorf("Expected defaulted flags, got %+v", a)
	}
}

func TestDecodeRepairsInvariants(t *testing.T) {
	payload := []byte(`[
		{"id":"A","title":"  First  ","createdAt":"2024-01-01T00:00:00Z"},
		{"id":"A","title":"Duplicate","createdAt":"2024-01-01T00:00:00Z"},
		{"id":"","title":"No id","createdAt":"2024-01-01T00:00:00Z"},
		{"id":"B","title":"   ","createdAt":"2024-01-01T00:00:00Z"},
		{"id":"S","title":"","isDivider":true,"createdAt":"2024-01-01T00:00:00Z"}
	]`)

	entries, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got := ids(entries); !reflect.DeepEqual(got, []string{"A", "B", "S"}) {
		t.Fatalf("Expected [A B S], got %v", got)
	}
	titles := []string{entries[0].EntryTitle(), entries[1].EntryTitle(), entries[2].EntryTitle()}
	want := []string{"First", fallbackTaskTitle, model.DefaultDividerTitle}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("Expected titles %v, got %v", want, titles)
	}
}

func TestImageReferencesAreWeakByDefault(t *testing.T) {
	deleter := &recordingDeleter{}
	withImage := task("A")
	withImage.ImageFilename = "a.jpg"
	s, _ := newSeededStore(t, Options{Images: deleter}, withImage)

	s.UpdateImage("A", "b.jpg")
	s.Delete("A")

	if len(deleter.deleted) != 0 {
		t.Errorf("Expected no image deletions, got %v", deleter.deleted)
	}
}

func TestCascadeImagesDeletesUnreferencedFiles(t *testing.T) {
	deleter := &recordingDeleter{}
	a := task("A")
	a.ImageFilename = "a.jpg"
	b := task("B")
	b.ImageFilename = "shared.jpg"
	c := task("C")
	c.ImageFilename = "shared.jpg"
	d := task("D")
	d.ImageFilename = "d.jpg"
	d.Done = true
	s, _ := newSeededStore(t, Options{CascadeImages: true, Images: deleter}, a, b, c, d)

	s.UpdateImage("A", "a2.jpg")
	s.UpdateImage("A", "")
	s.Delete("B") // C still references shared.jpg
	s.ClearCompleted()
	s.Delete("C")

	want := []string{"a.jpg", "a2.jpg", "d.jpg", "shared.jpg"}
	if !reflect.DeepEqual(deleter.deleted, want) {
		t.Errorf("Expected deletions %v, got %v", want, deleter.deleted)
	}
}

// TestInvariantsUnderRandomOperations drives a long random sequence of
// mutations and checks the list invariants after every step.
func TestInvariantsUnderRandomOperations(t *testing.T) {
	s, _ := newSeededStore(t, Options{})
	rng := rand.New(rand.NewSource(42))

	pick := func() string {
		entries := s.Entries()
		if len(entries) == 0 || rng.Intn(10) == 0 {
			return "missing"
		}
		return entries[rng.Intn(len(entries))].EntryID()
	}

	for step := 0; step < 2000; step++ {
		switch rng.Intn(10) {
		case 0, 1:
			s.AddTask(fmt.Sprintf("task %d", step))
		case 2:
			s.AddDivider("", Index(rng.Intn(s.Len()+3)-1))
		case 3:
			s.AddDivider("above", Above(pick()))
		case 4:
			s.MoveTask(pick(), pick())
		case 5:
			s.Delete(pick())
		case 6:
			s.ToggleDone(pick())
		case 7:
			s.SetInProgress(pick(), rng.Intn(2) == 0)
		case 8:
			s.UpdateTitle(pick(), "  renamed ")
		case 9:
			if rng.Intn(5) == 0 {
				s.ClearCompleted()
			}
		}

		entries := s.Entries()
		seen := make(map[string]bool)
		tasks := 0
		for _, e := range entries {
			if seen[e.EntryID()] {
				t.Fatalf("step %d: duplicate id %s", step, e.EntryID())
			}
			seen[e.EntryID()] = true

			if e.EntryTitle() == "" {
				t.Fatalf("step %d: empty title on %s", step, e.EntryID())
			}
			if tk, ok := e.(model.Task); ok {
				tasks++
				if tk.Done && tk.InProgress {
					t.Fatalf("step %d: task %s is both done and in progress", step, tk.ID)
				}
			}
		}
		if s.TaskCount() != tasks {
			t.Fatalf("step %d: TaskCount %d, counted %d", step, s.TaskCount(), tasks)
		}
	}
}
