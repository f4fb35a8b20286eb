package tasks

import (
	"encoding/json"

	"github.com/dori/sticky/internal/model"
)

const fallbackTaskTitle = "Untitled"

// Encode serializes entries in order as a JSON array of records
func Encode(entries []model.Entry) ([]byte, error) {
	return json.Marshal(model.Records(entries))
}

// Decode parses a payload written by Encode. Fields missing from older
// payloads take their zero value. Duplicate ids keep the first occurrence
// and blank titles get a placeholder, so the list invariants hold after load.
func Decode(data []byte) ([]model.Entry, error) {
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	entries := make([]model.Entry, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true

		if title, ok := normalizeTitle(r.Title); ok {
			r.Title = title
		} else if r.IsDivider {
			r.Title = model.DefaultDividerTitle
		} else {
			r.Title = fallbackTaskTitle
		}
		entries = append(entries, r.Entry())
	}
	return entries, nil
}

func (s *Store) load() []model.Entry {
	data, err := s.settings.Get(StorageKey)
	if err != nil {
		s.logger.Warn("failed to read saved entries, starting empty", "err", err)
		return []model.Entry{}
	}
	if data == nil {
		return []model.Entry{}
	}

	entries, err := Decode(data)
	if err != nil {
		s.logger.Warn("saved entries are corrupt, starting empty", "err", err)
		return []model.Entry{}
	}
	s.logger.Debug("loaded entries", "count", len(entries))
	return entries
}

// save writes the full list through to settings. Callers hold mu.
func (s *Store) save() {
	data, err := Encode(s.entries)
	if err != nil {
		s.logger.Warn("failed to encode entries", "err", err)
		return
	}
	if err := s.settings.Set(StorageKey, data); err != nil {
		s.logger.Warn("failed to save entries", "err", err)
	}
}
