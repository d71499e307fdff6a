package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// CaptureKind tells how the next free-text message of a participant is read.
type CaptureKind uint8

const (
	// CaptureIdle means no capture is pending.
	CaptureIdle CaptureKind = iota
	// CaptureSupport means the next message is a support ticket body.
	CaptureSupport
	// CaptureAnswer means the next message is the answer to Capture.Slot.
	CaptureAnswer
)

const (
	captureSupport      = "support"
	captureAnswerPrefix = "answer:"
)

// Capture is the pending-capture state of a participant: Idle,
// AwaitingSupport or AwaitingAnswer(slot). Exactly one variant is active.
// The zero value is Idle.
type Capture struct {
	kind CaptureKind
	slot Slot
}

// Idle returns the no-capture state.
func Idle() Capture { return Capture{} }

// AwaitingSupport returns the support ticket capture.
func AwaitingSupport() Capture { return Capture{kind: CaptureSupport} }

// AwaitingAnswer returns the answer capture for slot.
func AwaitingAnswer(slot Slot) Capture { return Capture{kind: CaptureAnswer, slot: slot} }

// Kind returns the active variant.
func (c Capture) Kind() CaptureKind { return c.kind }

// IsIdle reports whether no capture is pending.
func (c Capture) IsIdle() bool { return c.kind == CaptureIdle }

// Slot returns the awaited slot of an answer capture.
func (c Capture) Slot() (Slot, bool) {
	if c.kind != CaptureAnswer {
		return Slot{}, false
	}
	return c.slot, true
}

// String encodes the capture as stored: "", "support" or "answer:<slot>".
func (c Capture) String() string {
	switch c.kind {
	case CaptureSupport:
		return captureSupport
	case CaptureAnswer:
		return captureAnswerPrefix + c.slot.String()
	default:
		return ""
	}
}

// ParseCapture decodes the stored form produced by String.
func ParseCapture(raw string) (Capture, error) {
	switch raw = strings.TrimSpace(raw); {
	case raw == "":
		return Idle(), nil
	case raw == captureSupport:
		return AwaitingSupport(), nil
	case strings.HasPrefix(raw, captureAnswerPrefix):
		slot, err := ParseSlot(strings.TrimPrefix(raw, captureAnswerPrefix))
		if err != nil {
			return Capture{}, fmt.Errorf("%w: %q", ErrInvalidCapture, raw)
		}
		return AwaitingAnswer(slot), nil
	}
	return Capture{}, fmt.Errorf("%w: %q", ErrInvalidCapture, raw)
}

// Value implements driver.Valuer.
func (c Capture) Value() (driver.Value, error) {
	return c.String(), nil
}

// Scan implements sql.Scanner.
func (c *Capture) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidCapture, src)
	}
	parsed, err := ParseCapture(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
