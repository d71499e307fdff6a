package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Task indexes published every challenge day.
const (
	FirstTask = 1
	LastTask  = 2
)

// Slot names one task's answer bucket for one calendar day: "<day>.<task>".
type Slot struct {
	Day  int
	Task int
}

// String renders the slot without leading zeros, e.g. "9.1".
func (s Slot) String() string {
	return strconv.Itoa(s.Day) + "." + strconv.Itoa(s.Task)
}

// Valid reports whether the slot has a day of month and a known task index.
func (s Slot) Valid() bool {
	return s.Day >= 1 && s.Day <= 31 && s.Task >= FirstTask && s.Task <= LastTask
}

// ParseSlot parses "<day>.<task>". The day must be a day of month written
// without a leading zero and the task must be 1 or 2.
func ParseSlot(raw string) (Slot, error) {
	day, task, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok || !digits(day) || !digits(task) || day[0] == '0' {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
	}
	t, err := strconv.Atoi(task)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
	}
	s := Slot{Day: d, Task: t}
	if !s.Valid() || len(task) != 1 {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, raw)
	}
	return s, nil
}

// DaySlots lists the slots of every task published on day.
func DaySlots(day int) []Slot {
	slots := make([]Slot, 0, LastTask-FirstTask+1)
	for task := FirstTask; task <= LastTask; task++ {
		slots = append(slots, Slot{Day: day, Task: task})
	}
	return slots
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
