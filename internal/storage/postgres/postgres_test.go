package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/adventbot/core/database"
	"github.com/m3rciful/adventbot/internal/models"
	"github.com/m3rciful/adventbot/migrations"
)

// openTestDB connects to ADVENTBOT_TEST_DATABASE_URL, applies migrations and
// empties the tables. Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("ADVENTBOT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ADVENTBOT_TEST_DATABASE_URL not set")
	}
	cfg := database.Config{URL: url}
	if err := database.RunMigrations(cfg, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	db.MustExec(`TRUNCATE support_tickets, answers, participants`)
	return db
}

func TestParticipantsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewParticipants(db)

	now := time.Now().UTC().Truncate(time.Second)
	p := &models.Participant{ID: 1001, FirstName: "Ann", Username: "ann", CreatedAt: now, UpdatedAt: now}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, p); !errors.Is(err, models.ErrParticipantExists) {
		t.Fatalf("duplicate create: %v", err)
	}

	slot := models.Slot{Day: 9, Task: 1}
	if err := repo.SetCapture(ctx, p.ID, models.AwaitingAnswer(slot)); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Find(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := got.Capture.Slot(); !ok || s != slot {
		t.Fatalf("capture = %v", got.Capture)
	}

	if err := repo.SaveAnswer(ctx, p.ID, slot, "42"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveAnswer(ctx, p.ID, slot, "43"); !errors.Is(err, models.ErrSlotLocked) {
		t.Fatalf("second save: %v", err)
	}
	got, _ = repo.Find(ctx, p.ID)
	if got.Answers[slot] != "42" || !got.Capture.IsIdle() {
		t.Fatalf("after save = %+v", got)
	}

	if err := repo.MarkBlocked(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.Reactivate(ctx, p.ID, "Ann", "ann_new"); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.Find(ctx, p.ID)
	if got.Blocked || got.Username != "ann_new" || !got.CreatedAt.Equal(now) {
		t.Fatalf("after reactivate = %+v", got)
	}

	if n, err := repo.CountAnswers(ctx, slot); err != nil || n != 1 {
		t.Fatalf("count answers = %d, %v", n, err)
	}
	if n, err := repo.Count(ctx); err != nil || n != 1 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestParticipantsUnknownIdentity(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewParticipants(db)

	if _, err := repo.Find(ctx, 1); !errors.Is(err, models.ErrParticipantNotFound) {
		t.Fatalf("find: %v", err)
	}
	if err := repo.SetCapture(ctx, 1, models.AwaitingSupport()); !errors.Is(err, models.ErrParticipantNotFound) {
		t.Fatalf("set capture: %v", err)
	}
	if err := repo.SaveAnswer(ctx, 1, models.Slot{Day: 7, Task: 1}, "x"); !errors.Is(err, models.ErrParticipantNotFound) {
		t.Fatalf("save answer: %v", err)
	}
}

func TestTicketsAppend(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	people := NewParticipants(db)
	tickets := NewTickets(db)

	now := time.Now().UTC()
	if err := people.Create(ctx, &models.Participant{ID: 7, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}
	ticket := &models.SupportTicket{ID: uuid.New(), ParticipantID: 7, Username: "bob", Body: "help", CreatedAt: now, UpdatedAt: now}
	if err := tickets.Append(ctx, ticket); err != nil {
		t.Fatal(err)
	}
	if n, err := tickets.Count(ctx); err != nil || n != 1 {
		t.Fatalf("count = %d, %v", n, err)
	}
}
