package challenge

import (
	"testing"
	"time"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestTodayUsesFixedTimezone(t *testing.T) {
	// 21:30 UTC on Dec 6 is already Dec 7 in Moscow (UTC+3).
	now := time.Date(2024, 12, 6, 21, 30, 0, 0, time.UTC)
	cal, err := NewCalendar("Europe/Moscow", 7, 18, fixedClock(&now))
	if err != nil {
		t.Fatal(err)
	}
	if got := cal.Today(); got != "7" {
		t.Fatalf("Today = %q, want %q", got, "7")
	}

	now = time.Date(2024, 12, 6, 20, 59, 0, 0, time.UTC)
	if got := cal.Today(); got != "6" {
		t.Fatalf("Today = %q, want %q", got, "6")
	}
}

func TestTodayIdempotentAndMonotonic(t *testing.T) {
	now := time.Date(2024, 12, 8, 21, 0, 0, 0, time.UTC)
	cal, err := NewCalendar("", 7, 18, fixedClock(&now))
	if err != nil {
		t.Fatal(err)
	}
	prev := cal.Day()
	start := now
	for now.Sub(start) < 5*24*time.Hour {
		same := cal.Today()
		if cal.Today() != same {
			t.Fatal("Today not idempotent for the same instant")
		}
		day := cal.Day()
		if day < prev {
			t.Fatalf("day went backwards: %d -> %d at %s", prev, day, now)
		}
		prev = day
		now = now.Add(37 * time.Minute)
	}
}

func TestWindow(t *testing.T) {
	now := time.Date(2024, 12, 18, 12, 0, 0, 0, time.UTC)
	cal, err := NewCalendar("Europe/Moscow", 7, 18, fixedClock(&now))
	if err != nil {
		t.Fatal(err)
	}
	for day, want := range map[int]bool{6: false, 7: true, 12: true, 18: true, 19: false} {
		if got := cal.Active(day); got != want {
			t.Fatalf("Active(%d) = %v, want %v", day, got, want)
		}
	}
	if !cal.IsFinal(cal.Day()) || cal.IsFinal(17) {
		t.Fatal("IsFinal must hold on day 18 only")
	}
}

func TestNewCalendarValidation(t *testing.T) {
	if _, err := NewCalendar("Mars/Olympus", 7, 18, nil); err == nil {
		t.Fatal("unknown timezone accepted")
	}
	if _, err := NewCalendar("UTC", 18, 7, nil); err == nil {
		t.Fatal("inverted window accepted")
	}
	if _, err := NewCalendar("UTC", 0, 7, nil); err == nil {
		t.Fatal("day 0 accepted")
	}
}
