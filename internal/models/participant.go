package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a registered challenge member keyed by Telegram user id.
type Participant struct {
	ID        int64     `db:"telegram_id"`
	FirstName string    `db:"first_name"`
	Username  string    `db:"username"`
	Blocked   bool      `db:"blocked"`
	Capture   Capture   `db:"capture"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// Answers maps slots to submitted text. Entries are never changed once set.
	Answers map[Slot]string `db:"-"`
}

// Answered reports whether slot already holds an answer.
func (p *Participant) Answered(slot Slot) bool {
	_, ok := p.Answers[slot]
	return ok
}

// DayComplete reports whether every task of day is answered.
func (p *Participant) DayComplete(day int) bool {
	for _, slot := range DaySlots(day) {
		if !p.Answered(slot) {
			return false
		}
	}
	return true
}

// Answer is one stored answer row.
type Answer struct {
	ParticipantID int64     `db:"participant_id"`
	Slot          string    `db:"slot"`
	Text          string    `db:"answer"`
	CreatedAt     time.Time `db:"created_at"`
}

// SupportTicket is an append-only support request.
type SupportTicket struct {
	ID            uuid.UUID `db:"id"`
	ParticipantID int64     `db:"participant_id"`
	Username      string    `db:"username"`
	Body          string    `db:"body"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
