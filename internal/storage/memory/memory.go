// Package memory keeps participants and tickets in process memory. It backs
// tests and local runs without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m3rciful/adventbot/internal/models"
)

// Participants is a concurrency-safe in-memory participant store.
type Participants struct {
	mu   sync.RWMutex
	byID map[int64]*models.Participant
	now  func() time.Time
}

// NewParticipants returns an empty store.
func NewParticipants() *Participants {
	return &Participants{byID: make(map[int64]*models.Participant), now: time.Now}
}

// Find returns a copy of the participant with its answers.
func (s *Participants) Find(_ context.Context, id int64) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, models.ErrParticipantNotFound
	}
	return clone(p), nil
}

// Create stores p unless the identity is already taken.
func (s *Participants) Create(_ context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; ok {
		return models.ErrParticipantExists
	}
	stored := clone(p)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now().UTC()
		stored.UpdatedAt = stored.CreatedAt
	}
	s.byID[p.ID] = stored
	return nil
}

// Reactivate refreshes names, clears Blocked and resets the capture.
func (s *Participants) Reactivate(_ context.Context, id int64, firstName, username string) error {
	return s.update(id, func(p *models.Participant) error {
		p.FirstName = firstName
		p.Username = username
		p.Blocked = false
		p.Capture = models.Idle()
		return nil
	})
}

// SetCapture replaces the pending capture.
func (s *Participants) SetCapture(_ context.Context, id int64, c models.Capture) error {
	return s.update(id, func(p *models.Participant) error {
		p.Capture = c
		return nil
	})
}

// SaveAnswer writes the answer once and resets the capture.
func (s *Participants) SaveAnswer(_ context.Context, id int64, slot models.Slot, text string) error {
	return s.update(id, func(p *models.Participant) error {
		if p.Answered(slot) {
			return models.ErrSlotLocked
		}
		if p.Answers == nil {
			p.Answers = make(map[models.Slot]string)
		}
		p.Answers[slot] = text
		p.Capture = models.Idle()
		return nil
	})
}

// MarkBlocked flags the participant as unreachable.
func (s *Participants) MarkBlocked(_ context.Context, id int64) error {
	return s.update(id, func(p *models.Participant) error {
		p.Blocked = true
		return nil
	})
}

// Count returns the number of participants.
func (s *Participants) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// CountAnswers returns how many participants answered slot.
func (s *Participants) CountAnswers(_ context.Context, slot models.Slot) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, p := range s.byID {
		if p.Answered(slot) {
			n++
		}
	}
	return n, nil
}

// update applies fn under the write lock. A failing fn leaves the record untouched.
func (s *Participants) update(id int64, fn func(p *models.Participant) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return models.ErrParticipantNotFound
	}
	next := clone(p)
	if err := fn(next); err != nil {
		return err
	}
	next.UpdatedAt = s.now().UTC()
	s.byID[id] = next
	return nil
}

func clone(p *models.Participant) *models.Participant {
	cp := *p
	if p.Answers != nil {
		cp.Answers = make(map[models.Slot]string, len(p.Answers))
		for k, v := range p.Answers {
			cp.Answers[k] = v
		}
	}
	return &cp
}

// Tickets is an append-only in-memory ticket log.
type Tickets struct {
	mu   sync.RWMutex
	list []models.SupportTicket
}

// NewTickets returns an empty log.
func NewTickets() *Tickets {
	return &Tickets{}
}

// Append stores a copy of t.
func (s *Tickets) Append(_ context.Context, t *models.SupportTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append(s.list, *t)
	return nil
}

// Count returns the number of stored tickets.
func (s *Tickets) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list), nil
}

// All returns the tickets in append order.
func (s *Tickets) All() []models.SupportTicket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SupportTicket(nil), s.list...)
}
