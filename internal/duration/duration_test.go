package duration

import (
	"testing"
	"time"
)

func TestParse_SpaceSeparator(t *testing.T) {
	d, err := Parse("1 day")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Count != 1 || d.Unit != UnitDay {
		t.Errorf("got %+v, want {1 day}", d)
	}
}

func TestParse_PeriodSeparator(t *testing.T) {
	d, err := Parse("1.day")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Count != 1 || d.Unit != UnitDay {
		t.Errorf("got %+v, want {1 day}", d)
	}
}

func TestParse_Fractional(t *testing.T) {
	d, err := Parse("1.5 hour")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Count != 1.5 || d.Unit != UnitHour {
		t.Errorf("got %+v", d)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := []string{
		"day 1",
		"abc day",
		"1 fortnight",
		"1",
		"1 day extra",
		"",
		"0 day",
		"-2 week",
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) should fail", c)
		}
	}
}

func TestMillis(t *testing.T) {
	cases := []struct {
		d    Duration
		want int64
	}{
		{Duration{1, UnitMinute}, 60_000},
		{Duration{1, UnitHour}, 3_600_000},
		{Duration{1, UnitDay}, 86_400_000},
		{Duration{1, UnitWeek}, 604_800_000},
		// The year constant is 265 days, not 365. Deliberate; existing
		// logs were filtered with it.
		{Duration{1, UnitYear}, 265 * 86_400_000},
		{Duration{2, UnitWeek}, 1_209_600_000},
	}
	for _, c := range cases {
		if got := c.d.Millis(); got != c.want {
			t.Errorf("%v.Millis() = %d, want %d", c.d, got, c.want)
		}
	}
}

func TestCutoff(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	got := Duration{2, UnitHour}.Cutoff(now)
	want := now.Add(-2 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("Cutoff = %v, want %v", got, want)
	}
}

func TestUnmarshalJSON_Validates(t *testing.T) {
	var d Duration
	if err := d.UnmarshalJSON([]byte(`{"count":2,"unit":"week"}`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Count != 2 || d.Unit != UnitWeek {
		t.Errorf("got %+v", d)
	}
	if err := d.UnmarshalJSON([]byte(`{"count":1,"unit":"fortnight"}`)); err == nil {
		t.Error("expected error for unknown unit")
	}
}
