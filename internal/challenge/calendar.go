// Package challenge resolves the current challenge day.
package challenge

import (
	"fmt"
	"strconv"
	"time"
	_ "time/tzdata" // zone database for minimal images
)

// DefaultTimezone is the zone whose calendar day gates submissions.
const DefaultTimezone = "Europe/Moscow"

// Calendar maps wall-clock time to challenge days in a fixed timezone.
type Calendar struct {
	loc      *time.Location
	firstDay int
	lastDay  int
	now      func() time.Time
}

// NewCalendar loads tz and returns a calendar for days [firstDay, lastDay].
// A nil now uses time.Now.
func NewCalendar(tz string, firstDay, lastDay int, now func() time.Time) (*Calendar, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("challenge: load timezone %q: %w", tz, err)
	}
	if firstDay < 1 || lastDay > 31 || firstDay > lastDay {
		return nil, fmt.Errorf("challenge: invalid day window %d..%d", firstDay, lastDay)
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, firstDay: firstDay, lastDay: lastDay, now: now}, nil
}

// Day returns the current day of month in the calendar's timezone.
func (c *Calendar) Day() int {
	return c.now().In(c.loc).Day()
}

// Today returns the current day as decimal text without leading zero.
func (c *Calendar) Today() string {
	return strconv.Itoa(c.Day())
}

// Active reports whether tasks are published on day.
func (c *Calendar) Active(day int) bool {
	return day >= c.firstDay && day <= c.lastDay
}

// IsFinal reports whether day is the last challenge day.
func (c *Calendar) IsFinal(day int) bool {
	return day == c.lastDay
}

// Location returns the calendar's timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}
