// Package postgres stores participants, answers and support tickets in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/adventbot/internal/models"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Participants persists participant records and their answers.
type Participants struct {
	db *sqlx.DB
}

// NewParticipants creates a participant repository.
func NewParticipants(db *sqlx.DB) *Participants {
	return &Participants{db: db}
}

// Find loads the participant and every stored answer.
func (r *Participants) Find(ctx context.Context, id int64) (*models.Participant, error) {
	const q = `SELECT telegram_id, first_name, username, blocked, capture, created_at, updated_at
		FROM participants WHERE telegram_id = $1`
	var p models.Participant
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("select participant: %w", err)
	}

	const qa = `SELECT participant_id, slot, answer, created_at FROM answers WHERE participant_id = $1`
	var rows []models.Answer
	if err := r.db.SelectContext(ctx, &rows, qa, id); err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}
	p.Answers = make(map[models.Slot]string, len(rows))
	for _, a := range rows {
		slot, err := models.ParseSlot(a.Slot)
		if err != nil {
			return nil, fmt.Errorf("answer of %d: %w", id, err)
		}
		p.Answers[slot] = a.Text
	}
	return &p, nil
}

// Create inserts p. A taken identity yields models.ErrParticipantExists.
func (r *Participants) Create(ctx context.Context, p *models.Participant) error {
	const q = `INSERT INTO participants (telegram_id, first_name, username, blocked, capture, created_at, updated_at)
		VALUES (:telegram_id, :first_name, :username, :blocked, :capture, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, p); err != nil {
		if pqCode(err) == pqUniqueViolation {
			return models.ErrParticipantExists
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// Reactivate refreshes names, clears blocked and resets the capture.
func (r *Participants) Reactivate(ctx context.Context, id int64, firstName, username string) error {
	const q = `UPDATE participants
		SET first_name = $2, username = $3, blocked = FALSE, capture = '', updated_at = now()
		WHERE telegram_id = $1`
	return r.exec(ctx, "reactivate", q, id, firstName, username)
}

// SetCapture replaces the pending capture.
func (r *Participants) SetCapture(ctx context.Context, id int64, c models.Capture) error {
	const q = `UPDATE participants SET capture = $2, updated_at = now() WHERE telegram_id = $1`
	return r.exec(ctx, "set capture", q, id, c)
}

// MarkBlocked flags the participant as unreachable.
func (r *Participants) MarkBlocked(ctx context.Context, id int64) error {
	const q = `UPDATE participants SET blocked = TRUE, updated_at = now() WHERE telegram_id = $1`
	return r.exec(ctx, "mark blocked", q, id)
}

// SaveAnswer inserts the answer and resets the capture in one transaction.
// The answers primary key makes a second write for the slot a no-op that
// is reported as models.ErrSlotLocked.
func (r *Participants) SaveAnswer(ctx context.Context, id int64, slot models.Slot, text string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const qi = `INSERT INTO answers (participant_id, slot, answer) VALUES ($1, $2, $3)
		ON CONFLICT (participant_id, slot) DO NOTHING`
	res, err := tx.ExecContext(ctx, qi, id, slot.String(), text)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return models.ErrParticipantNotFound
		}
		return fmt.Errorf("insert answer: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("insert answer: %w", err)
	} else if n == 0 {
		return models.ErrSlotLocked
	}

	const qu = `UPDATE participants SET capture = '', updated_at = now() WHERE telegram_id = $1`
	if _, err := tx.ExecContext(ctx, qu, id); err != nil {
		return fmt.Errorf("clear capture: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Count returns the number of participants.
func (r *Participants) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM participants`); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

// CountAnswers returns how many participants answered slot.
func (r *Participants) CountAnswers(ctx context.Context, slot models.Slot) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM answers WHERE slot = $1`, slot.String()); err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return n, nil
}

func (r *Participants) exec(ctx context.Context, op, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return models.ErrParticipantNotFound
	}
	return nil
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}
