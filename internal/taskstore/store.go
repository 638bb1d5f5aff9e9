// Package taskstore persists the task log as a single JSON array and
// implements the recency and tag filters over it.
package taskstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tasklog/internal/apperr"
	"tasklog/internal/duration"
	"tasklog/internal/models"
	"tasklog/internal/storage"
)

// FileName is the task file name under the base directory.
const FileName = "tasks.json"

// Store persists tasks under the base directory. Appends rewrite the whole
// file; there is no locking, last writer wins.
type Store struct {
	fs storage.Provider
}

// NewStore creates a task store over the given provider.
func NewStore(fs storage.Provider) *Store {
	return &Store{fs: fs}
}

// Load reads and validates the whole task array. Any element failing
// validation fails the load; there is no partial recovery.
func (s *Store) Load() ([]models.Task, error) {
	ok, err := s.fs.Exists(FileName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("task file not found; run init first")
	}
	data, err := s.fs.Read(FileName)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var tasks []models.Task
	if err := dec.Decode(&tasks); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "invalid task file")
	}
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, err, fmt.Sprintf("invalid task at index %d", i))
		}
	}
	return tasks, nil
}

// Save serializes the whole array as pretty-printed JSON and overwrites
// the file.
func (s *Store) Save(tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	return s.fs.Write(FileName, append(data, '\n'))
}

// Append loads the array, pushes one task, and saves it back.
func (s *Store) Append(t models.Task) error {
	if err := t.Validate(); err != nil {
		return apperr.Wrap(apperr.KindValidation, err, "invalid task")
	}
	tasks, err := s.Load()
	if err != nil {
		return err
	}
	return s.Save(append(tasks, t))
}

// ShortDescriber generates a one-sentence condensation of a task description.
type ShortDescriber interface {
	ShortDescription(ctx context.Context, description string) (string, error)
}

// Backfill fills the short description of every task lacking one, in
// order, one request at a time. A failed request aborts the whole run and
// nothing is saved; on full success the array is saved once. Returns the
// number of descriptions generated.
func (s *Store) Backfill(ctx context.Context, sd ShortDescriber) (int, error) {
	tasks, err := s.Load()
	if err != nil {
		return 0, err
	}

	filled := 0
	for i := range tasks {
		if tasks[i].ShortDescription != "" {
			continue
		}
		short, err := sd.ShortDescription(ctx, tasks[i].Description)
		if err != nil {
			return 0, err
		}
		tasks[i].ShortDescription = short
		filled++
	}
	if filled == 0 {
		return 0, nil
	}
	return filled, s.Save(tasks)
}

// Since returns the subsequence of tasks dated at or after now minus d,
// preserving original order. The input is not mutated.
func Since(tasks []models.Task, d duration.Duration, now time.Time) []models.Task {
	cutoff := d.Cutoff(now)
	var out []models.Task
	for _, t := range tasks {
		ts, err := t.Time()
		if err != nil {
			continue
		}
		if !ts.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// FilterTags returns the tasks carrying at least one of the given tags.
// An empty tag list matches everything.
func FilterTags(tasks []models.Task, tags []string) []models.Task {
	if len(tags) == 0 {
		return tasks
	}
	var out []models.Task
	for _, t := range tasks {
		if t.HasTag(tags) {
			out = append(out, t)
		}
	}
	return out
}

// Tags returns the unique tags across all tasks in first-seen order.
func Tags(tasks []models.Task) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range tasks {
		for _, tag := range t.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
