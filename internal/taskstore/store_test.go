package taskstore

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"tasklog/internal/apperr"
	"tasklog/internal/duration"
	"tasklog/internal/models"
	"tasklog/internal/storage"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dir, err := storage.NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewStore(dir)
}

func initedStore(t *testing.T) *Store {
	t.Helper()
	s := testStore(t)
	if err := s.Save(nil); err != nil {
		t.Fatal(err)
	}
	return s
}

func dated(t *testing.T, ts time.Time, desc string, tags ...string) models.Task {
	t.Helper()
	return models.Task{Date: ts.Format(time.RFC3339), Description: desc, Tags: tags}
}

func TestRoundTrip(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	tasks := []models.Task{
		{Date: now.Format(time.RFC3339), Description: "full", ShortDescription: "short", Tags: []string{"a", "b"}},
		{Date: now.Format(time.RFC3339), Description: "bare"},
	}
	if err := s.Save(tasks); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, tasks) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, tasks)
	}
}

func TestLoad_Missing(t *testing.T) {
	s := testStore(t)
	_, err := s.Load()
	if err == nil {
		t.Fatal("expected error for missing task file")
	}
	ae, ok := apperr.FromError(err)
	if !ok || ae.Kind != apperr.KindNotFound {
		t.Errorf("expected not-found application error, got %v", err)
	}
}

func TestLoad_InvalidElementFailsWhole(t *testing.T) {
	dir, err := storage.NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(dir)
	// Second element has no description.
	raw := `[{"date":"2026-01-01T00:00:00Z","description":"ok"},{"date":"2026-01-02T00:00:00Z"}]`
	if err := dir.Write(FileName, []byte(raw)); err != nil {
		t.Fatal(err)
	}
	_, err = s.Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	ae, ok := apperr.FromError(err)
	if !ok || ae.Kind != apperr.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	dir, err := storage.NewDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(dir)
	raw := `[{"date":"2026-01-01T00:00:00Z","description":"ok","priority":"high"}]`
	if err := dir.Write(FileName, []byte(raw)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestAppend(t *testing.T) {
	s := initedStore(t)
	task := models.NewTask(time.Now(), "did a thing", []string{"work"})
	if err := s.Append(task); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Description != "did a thing" {
		t.Errorf("got %+v", got)
	}
}

func TestAppend_Uninitialized(t *testing.T) {
	s := testStore(t)
	err := s.Append(models.NewTask(time.Now(), "x", nil))
	if err == nil {
		t.Fatal("expected error on uninitialized store")
	}
	ae, ok := apperr.FromError(err)
	if !ok || ae.Kind != apperr.KindNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSince(t *testing.T) {
	now := time.Now()
	tasks := []models.Task{
		dated(t, now, "now"),
		dated(t, now.Add(-2*time.Hour), "two hours ago"),
		dated(t, now.Add(-48*time.Hour), "two days ago"),
	}
	got := Since(tasks, duration.Duration{Count: 1, Unit: duration.UnitDay}, now)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Description != "now" || got[1].Description != "two hours ago" {
		t.Errorf("got %+v", got)
	}
}

func TestSince_PreservesOrderAndInput(t *testing.T) {
	now := time.Now()
	tasks := []models.Task{
		dated(t, now.Add(-time.Minute), "first"),
		dated(t, now, "second"),
	}
	got := Since(tasks, duration.Duration{Count: 1, Unit: duration.UnitHour}, now)
	if len(got) != 2 || got[0].Description != "first" {
		t.Errorf("order not preserved: %+v", got)
	}
	if len(tasks) != 2 {
		t.Error("input mutated")
	}
}

func TestFilterTags(t *testing.T) {
	now := time.Now()
	tasks := []models.Task{
		dated(t, now, "a-task", "a"),
		dated(t, now, "b-task", "b"),
		dated(t, now, "untagged"),
	}
	got := FilterTags(tasks, []string{"a"})
	if len(got) != 1 || got[0].Description != "a-task" {
		t.Errorf("got %+v", got)
	}

	// Empty filter matches everything.
	if got := FilterTags(tasks, nil); len(got) != 3 {
		t.Errorf("empty filter len = %d, want 3", len(got))
	}
}

func TestTags_UniqueFirstSeen(t *testing.T) {
	now := time.Now()
	tasks := []models.Task{
		dated(t, now, "one", "b", "a"),
		dated(t, now, "two", "a", "c"),
	}
	got := Tags(tasks)
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

type fakeDescriber struct {
	replies map[string]string
	failOn  string
	calls   []string
}

func (f *fakeDescriber) ShortDescription(_ context.Context, description string) (string, error) {
	f.calls = append(f.calls, description)
	if description == f.failOn {
		return "", errors.New("boom")
	}
	return f.replies[description], nil
}

func TestBackfill_FillsOnlyBlanks(t *testing.T) {
	s := initedStore(t)
	now := time.Now()
	tasks := []models.Task{
		{Date: now.Format(time.RFC3339), Description: "long one", ShortDescription: "already short"},
		{Date: now.Format(time.RFC3339), Description: "long two"},
	}
	if err := s.Save(tasks); err != nil {
		t.Fatal(err)
	}

	fd := &fakeDescriber{replies: map[string]string{"long two": "short two"}}
	n, err := s.Backfill(context.Background(), fd)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if n != 1 {
		t.Errorf("filled = %d, want 1", n)
	}
	if len(fd.calls) != 1 || fd.calls[0] != "long two" {
		t.Errorf("calls = %v, populated fields must be untouched", fd.calls)
	}

	got, _ := s.Load()
	if got[0].ShortDescription != "already short" {
		t.Errorf("existing short description changed: %q", got[0].ShortDescription)
	}
	if got[1].ShortDescription != "short two" {
		t.Errorf("short = %q, want short two", got[1].ShortDescription)
	}
}

func TestBackfill_AbortsWithoutSaving(t *testing.T) {
	s := initedStore(t)
	now := time.Now()
	tasks := []models.Task{
		{Date: now.Format(time.RFC3339), Description: "first"},
		{Date: now.Format(time.RFC3339), Description: "second"},
	}
	if err := s.Save(tasks); err != nil {
		t.Fatal(err)
	}

	fd := &fakeDescriber{replies: map[string]string{"first": "short first"}, failOn: "second"}
	if _, err := s.Backfill(context.Background(), fd); err == nil {
		t.Fatal("expected error")
	}

	// Nothing must be persisted, including the successful first request.
	got, _ := s.Load()
	if got[0].ShortDescription != "" || got[1].ShortDescription != "" {
		t.Errorf("partial backfill was saved: %+v", got)
	}
}

func TestBackfill_NoopSkipsSave(t *testing.T) {
	s := initedStore(t)
	fd := &fakeDescriber{}
	n, err := s.Backfill(context.Background(), fd)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if n != 0 || len(fd.calls) != 0 {
		t.Errorf("n = %d, calls = %v", n, fd.calls)
	}
}
