package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/adventbot/internal/models"
)

// Tickets is the append-only support ticket log.
type Tickets struct {
	db *sqlx.DB
}

// NewTickets creates a ticket repository.
func NewTickets(db *sqlx.DB) *Tickets {
	return &Tickets{db: db}
}

// Append inserts t.
func (r *Tickets) Append(ctx context.Context, t *models.SupportTicket) error {
	const q = `INSERT INTO support_tickets (id, participant_id, username, body, created_at, updated_at)
		VALUES (:id, :participant_id, :username, :body, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, t); err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// Count returns the number of stored tickets.
func (r *Tickets) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM support_tickets`); err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return n, nil
}
