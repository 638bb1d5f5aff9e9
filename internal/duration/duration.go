// Package duration parses human-entered durations ("2 week", "1.day") and
// converts them to time-window cutoffs.
package duration

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"tasklog/internal/apperr"
)

// Unit is a supported duration unit.
type Unit string

const (
	UnitMinute Unit = "minute"
	UnitHour   Unit = "hour"
	UnitDay    Unit = "day"
	UnitWeek   Unit = "week"
	UnitYear   Unit = "year"
)

// Milliseconds per unit. The year is a fixed 265-day approximation; existing
// logs were filtered with this constant, so it stays.
var unitMillis = map[Unit]int64{
	UnitMinute: 60 * 1000,
	UnitHour:   3600 * 1000,
	UnitDay:    86400 * 1000,
	UnitWeek:   604800 * 1000,
	UnitYear:   265 * 86400 * 1000,
}

// Duration is a count of units, e.g. {2, week}.
type Duration struct {
	Count float64 `json:"count"`
	Unit  Unit    `json:"unit"`
}

// Validate checks that the count is positive and the unit is known.
func (d Duration) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Count, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&d.Unit, validation.Required,
			validation.In(UnitMinute, UnitHour, UnitDay, UnitWeek, UnitYear)),
	)
}

// Millis returns the duration length in milliseconds.
func (d Duration) Millis() int64 {
	return int64(d.Count * float64(unitMillis[d.Unit]))
}

// Cutoff returns the instant that lies d before now.
func (d Duration) Cutoff(now time.Time) time.Time {
	return now.Add(-time.Duration(d.Millis()) * time.Millisecond)
}

func (d Duration) String() string {
	return fmt.Sprintf("%g %s", d.Count, d.Unit)
}

// Parse converts a string like "1 day" or "1.day" into a Duration. The
// number and unit must be separated by a single space or a single period;
// anything else is a validation error.
func Parse(s string) (Duration, error) {
	var parts []string
	if strings.Contains(s, " ") {
		parts = strings.Split(s, " ")
	} else {
		parts = strings.Split(s, ".")
	}
	if len(parts) != 2 {
		return Duration{}, apperr.Validationf("invalid duration %q: want <count> <unit>", s)
	}

	count, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Duration{}, apperr.Validationf("invalid duration count %q", parts[0])
	}

	d := Duration{Count: count, Unit: Unit(parts[1])}
	if err := d.Validate(); err != nil {
		return Duration{}, apperr.Wrap(apperr.KindValidation, err, fmt.Sprintf("invalid duration %q", s))
	}
	return d, nil
}

// UnmarshalJSON decodes and validates a persisted duration.
func (d *Duration) UnmarshalJSON(data []byte) error {
	type raw Duration
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	parsed := Duration(r)
	if err := parsed.Validate(); err != nil {
		return err
	}
	*d = parsed
	return nil
}
