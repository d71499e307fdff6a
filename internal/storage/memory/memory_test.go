package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/adventbot/internal/models"
)

func TestParticipantsLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewParticipants()

	if _, err := s.Find(ctx, 1); !errors.Is(err, models.ErrParticipantNotFound) {
		t.Fatalf("find unknown: %v", err)
	}
	if err := s.Create(ctx, &models.Participant{ID: 1, Username: "ann"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Create(ctx, &models.Participant{ID: 1}); !errors.Is(err, models.ErrParticipantExists) {
		t.Fatalf("duplicate create: %v", err)
	}

	slot := models.Slot{Day: 9, Task: 1}
	if err := s.SetCapture(ctx, 1, models.AwaitingAnswer(slot)); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveAnswer(ctx, 1, slot, "42"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveAnswer(ctx, 1, slot, "43"); !errors.Is(err, models.ErrSlotLocked) {
		t.Fatalf("second save: %v", err)
	}

	p, err := s.Find(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.Answers[slot] != "42" || !p.Capture.IsIdle() {
		t.Fatalf("participant = %+v", p)
	}

	if err := s.MarkBlocked(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Reactivate(ctx, 1, "Ann", "ann2"); err != nil {
		t.Fatal(err)
	}
	p, _ = s.Find(ctx, 1)
	if p.Blocked || p.Username != "ann2" || p.Answers[slot] != "42" {
		t.Fatalf("after reactivate = %+v", p)
	}

	if n, _ := s.CountAnswers(ctx, slot); n != 1 {
		t.Fatalf("answers = %d", n)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Fatalf("count = %d", n)
	}
}

func TestFindReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewParticipants()
	_ = s.Create(ctx, &models.Participant{ID: 5})
	_ = s.SaveAnswer(ctx, 5, models.Slot{Day: 7, Task: 2}, "x")

	p, _ := s.Find(ctx, 5)
	p.Answers[models.Slot{Day: 7, Task: 2}] = "changed"

	again, _ := s.Find(ctx, 5)
	if again.Answers[models.Slot{Day: 7, Task: 2}] != "x" {
		t.Fatal("stored answers mutated through a returned copy")
	}
}

func TestUpdateUnknownParticipant(t *testing.T) {
	s := NewParticipants()
	if err := s.SetCapture(context.Background(), 9, models.AwaitingSupport()); !errors.Is(err, models.ErrParticipantNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestTicketsAppend(t *testing.T) {
	ctx := context.Background()
	s := NewTickets()
	_ = s.Append(ctx, &models.SupportTicket{ParticipantID: 1, Body: "help"})
	_ = s.Append(ctx, &models.SupportTicket{ParticipantID: 2, Body: "again"})
	if n, _ := s.Count(ctx); n != 2 {
		t.Fatalf("count = %d", n)
	}
	if all := s.All(); all[0].Body != "help" || all[1].ParticipantID != 2 {
		t.Fatalf("all = %+v", all)
	}
}
