// Package models defines the domain types for tasklog.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Task is one logged entry. Tasks are immutable after creation except for
// the short-description backfill. Identity is positional; the persisted
// array order is assumed chronological.
type Task struct {
	Date             string   `json:"date" yaml:"date"`
	Description      string   `json:"description" yaml:"description"`
	ShortDescription string   `json:"short_description,omitempty" yaml:"short_description,omitempty"`
	Tags             []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Validate checks the persisted task shape.
func (t Task) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Date, validation.Required, validation.By(validRFC3339)),
		validation.Field(&t.Description, validation.Required),
		validation.Field(&t.Tags, validation.Each(validation.Required)),
	)
}

// Time returns the task's creation instant.
func (t Task) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, t.Date)
}

// HasTag reports whether the task carries any of the given tags.
func (t Task) HasTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range t.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

func validRFC3339(value any) error {
	s, _ := value.(string)
	_, err := time.Parse(time.RFC3339, s)
	return err
}

// NewTask creates a task dated now.
func NewTask(now time.Time, description string, tags []string) Task {
	return Task{
		Date:        now.Format(time.RFC3339),
		Description: description,
		Tags:        tags,
	}
}
