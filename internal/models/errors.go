package models

import "errors"

var (
	// ErrParticipantNotFound is returned when no participant has the identity.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrParticipantExists is returned by Create when the identity is taken.
	ErrParticipantExists = errors.New("participant already exists")
	// ErrInvalidSlot is returned for slot identifiers outside the <day>.<1|2> grammar.
	ErrInvalidSlot = errors.New("invalid slot")
	// ErrSlotLocked is returned when an answer for the slot already exists.
	ErrSlotLocked = errors.New("slot already answered")
	// ErrInvalidCapture is returned when a stored capture value cannot be decoded.
	ErrInvalidCapture = errors.New("invalid capture")
)
