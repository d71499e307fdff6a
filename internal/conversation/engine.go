// Package conversation implements the per-participant dialogue: registration,
// the task picker, answer capture and support tickets.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/adventbot/core/logger"
	"github.com/m3rciful/adventbot/core/metrics"
	"github.com/m3rciful/adventbot/core/telegram/format"
	"github.com/m3rciful/adventbot/internal/models"
)

// Participants is the participant record store.
type Participants interface {
	// Find returns the participant with answers, or models.ErrParticipantNotFound.
	Find(ctx context.Context, id int64) (*models.Participant, error)
	// Create inserts a new participant, or returns models.ErrParticipantExists.
	Create(ctx context.Context, p *models.Participant) error
	// Reactivate refreshes names, clears Blocked and resets the capture.
	Reactivate(ctx context.Context, id int64, firstName, username string) error
	SetCapture(ctx context.Context, id int64, c models.Capture) error
	// SaveAnswer stores the answer and resets the capture in one step.
	// It returns models.ErrSlotLocked when the slot already has an answer.
	SaveAnswer(ctx context.Context, id int64, slot models.Slot, text string) error
	MarkBlocked(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	CountAnswers(ctx context.Context, slot models.Slot) (int, error)
}

// Tickets is the append-only support ticket store.
type Tickets interface {
	Append(ctx context.Context, t *models.SupportTicket) error
	Count(ctx context.Context) (int, error)
}

// Notifier relays tickets to the operator. It must not fail the caller.
type Notifier interface {
	NotifyTicket(ctx context.Context, t models.SupportTicket)
}

// Calendar resolves the current challenge day.
type Calendar interface {
	Day() int
	Active(day int) bool
	IsFinal(day int) bool
}

// Identity is the sender of an update as reported by the transport.
type Identity struct {
	ID        int64
	FirstName string
	Username  string
}

// Button is an inline button: label, callback key and payload.
type Button struct {
	Text   string
	Unique string
	Data   string
}

// Reply is one outbound message produced by the engine.
type Reply struct {
	Text   string
	HTML   bool
	Inline [][]Button
	// Menu attaches the reply keyboard with the MenuSubmit button.
	Menu bool
	// Edit replaces the message the pressed button belongs to.
	Edit bool
	// Status replaces the interim TextPleaseWait message.
	Status bool
}

// Options configures an Engine.
type Options struct {
	Participants Participants
	Tickets      Tickets
	Notifier     Notifier
	Calendar     Calendar

	MonthLabel string
	ChatURL    string
	TasksURL   string
	FAQ        string
	Rules      string

	// NewID generates ticket ids; uuid.New by default.
	NewID func() uuid.UUID
	// Now stamps new records; time.Now by default.
	Now func() time.Time
}

// Engine interprets participant updates against their stored state.
type Engine struct {
	participants Participants
	tickets      Tickets
	notifier     Notifier
	calendar     Calendar

	month    string
	chatURL  string
	tasksURL string
	faq      string
	rules    string

	newID func() uuid.UUID
	now   func() time.Time
}

// New validates opts and builds an Engine.
func New(opts Options) (*Engine, error) {
	switch {
	case opts.Participants == nil:
		return nil, fmt.Errorf("conversation: participant store is required")
	case opts.Tickets == nil:
		return nil, fmt.Errorf("conversation: ticket store is required")
	case opts.Notifier == nil:
		return nil, fmt.Errorf("conversation: notifier is required")
	case opts.Calendar == nil:
		return nil, fmt.Errorf("conversation: calendar is required")
	}
	e := &Engine{
		participants: opts.Participants,
		tickets:      opts.Tickets,
		notifier:     opts.Notifier,
		calendar:     opts.Calendar,
		month:        firstNonEmpty(opts.MonthLabel, defaultMonthLabel),
		chatURL:      strings.TrimSpace(opts.ChatURL),
		tasksURL:     strings.TrimSpace(opts.TasksURL),
		faq:          firstNonEmpty(opts.FAQ, defaultFAQ),
		rules:        firstNonEmpty(opts.Rules, defaultRules),
		newID:        opts.NewID,
		now:          opts.Now,
	}
	if e.newID == nil {
		e.newID = uuid.New
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// Start returns the introduction with the registration button.
func (e *Engine) Start() []Reply {
	text := textIntro
	if e.tasksURL != "" {
		text += fmt.Sprintf(textIntroTasks, format.Link(e.tasksURL, "ссылка"))
	}
	text += textIntroTail
	return []Reply{{
		Text:   text,
		HTML:   true,
		Inline: [][]Button{{{Text: labelStart, Unique: KeyStart, Data: KeyStart}}},
	}}
}

// FAQ returns the static FAQ page.
func (e *Engine) FAQ() []Reply { return []Reply{{Text: e.faq, HTML: true}} }

// Rules returns the static rules page.
func (e *Engine) Rules() []Reply { return []Reply{{Text: e.rules}} }

// Register creates the participant or refreshes an existing one. The first
// reply is the registration result and replaces the interim status message.
func (e *Engine) Register(ctx context.Context, who Identity) ([]Reply, error) {
	created, err := e.createOrRefresh(ctx, who)
	if err != nil {
		return nil, err
	}
	metrics.RecordRegistration(created)

	outcome, result := "refreshed", textRefreshed
	if created {
		outcome, result = "registered", textRegistered
	}
	logger.LogEvent(ctx, logger.SVCParticipants, slog.LevelInfo, "participant.register",
		slog.String("status", "ok"),
		slog.String("outcome", outcome),
		slog.Int64("user_id", who.ID),
	)
	return []Reply{
		{Text: result, Status: true},
		{Text: textWelcomeMenu, Menu: true},
	}, nil
}

func (e *Engine) createOrRefresh(ctx context.Context, who Identity) (bool, error) {
	_, err := e.participants.Find(ctx, who.ID)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrParticipantNotFound):
		now := e.now().UTC()
		err = e.participants.Create(ctx, &models.Participant{
			ID:        who.ID,
			FirstName: who.FirstName,
			Username:  who.Username,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, models.ErrParticipantExists) {
			return false, fmt.Errorf("create participant: %w", err)
		}
	default:
		return false, fmt.Errorf("find participant: %w", err)
	}
	if err := e.participants.Reactivate(ctx, who.ID, who.FirstName, who.Username); err != nil {
		return false, fmt.Errorf("reactivate participant: %w", err)
	}
	return false, nil
}

// TaskPicker offers the two tasks of the current day.
func (e *Engine) TaskPicker(ctx context.Context, who Identity) ([]Reply, error) {
	if _, replies, err := e.registered(ctx, who); replies != nil || err != nil {
		return replies, err
	}
	return []Reply{e.picker()}, nil
}

// Back re-renders the task picker over the message with the pressed button.
func (e *Engine) Back(ctx context.Context, who Identity) ([]Reply, error) {
	if _, replies, err := e.registered(ctx, who); replies != nil || err != nil {
		return replies, err
	}
	r := e.picker()
	r.Edit = true
	return []Reply{r}, nil
}

func (e *Engine) picker() Reply {
	day := e.calendar.Day()
	if !e.calendar.Active(day) {
		return Reply{Text: textNoTasks}
	}
	row := make([]Button, 0, models.LastTask)
	for _, slot := range models.DaySlots(day) {
		row = append(row, Button{Text: strconv.Itoa(slot.Task), Unique: KeyTask, Data: slot.String()})
	}
	return Reply{Text: fmt.Sprintf(textPicker, day, e.month), Inline: [][]Button{row}}
}

// SelectSlot handles a task button. raw must be a "<day>.<task>" slot inside
// the challenge window; anything else yields models.ErrInvalidSlot.
func (e *Engine) SelectSlot(ctx context.Context, who Identity, raw string) ([]Reply, error) {
	slot, err := models.ParseSlot(raw)
	if err != nil {
		return nil, err
	}
	if !e.calendar.Active(slot.Day) {
		return nil, fmt.Errorf("%w: day %d outside challenge", models.ErrInvalidSlot, slot.Day)
	}

	p, replies, err := e.registered(ctx, who)
	if replies != nil || err != nil {
		return replies, err
	}

	today := e.calendar.Day()
	if slot.Day != today {
		if _, pending := p.Capture.Slot(); pending {
			if err := e.participants.SetCapture(ctx, p.ID, models.Idle()); err != nil {
				return nil, fmt.Errorf("clear stale capture: %w", err)
			}
		}
		e.logAnswer(ctx, slog.LevelInfo, "answer.select", p.ID, slot, "expired")
		metrics.RecordAnswer(slot.Task, "expired")
		return []Reply{e.expired(today, slot)}, nil
	}
	if p.Answered(slot) {
		e.logAnswer(ctx, slog.LevelInfo, "answer.select", p.ID, slot, "locked")
		metrics.RecordAnswer(slot.Task, "locked")
		return []Reply{locked(slot)}, nil
	}

	if err := e.participants.SetCapture(ctx, p.ID, models.AwaitingAnswer(slot)); err != nil {
		return nil, fmt.Errorf("set answer capture: %w", err)
	}
	e.logAnswer(ctx, slog.LevelInfo, "answer.select", p.ID, slot, "captured")
	return []Reply{{
		Text:   fmt.Sprintf(textAnswerPrompt, slot),
		Inline: [][]Button{{{Text: labelCancel, Unique: KeyCancel, Data: CancelAnswer}}},
	}}, nil
}

// RequestSupport starts capturing a support ticket.
func (e *Engine) RequestSupport(ctx context.Context, who Identity) ([]Reply, error) {
	p, replies, err := e.registered(ctx, who)
	if replies != nil || err != nil {
		return replies, err
	}
	if err := e.participants.SetCapture(ctx, p.ID, models.AwaitingSupport()); err != nil {
		return nil, fmt.Errorf("set support capture: %w", err)
	}
	logger.LogEvent(ctx, logger.SVCSupport, slog.LevelInfo, "support.request",
		slog.String("outcome", "captured"),
		slog.Int64("user_id", p.ID),
	)
	return []Reply{{
		Text:   textSupportPrompt,
		Inline: [][]Button{{{Text: labelCancel, Unique: KeyCancel, Data: CancelSupport}}},
	}}, nil
}

// Cancel drops a pending capture of the given kind (CancelAnswer or
// CancelSupport) and edits the prompt. A capture of the other kind is kept.
func (e *Engine) Cancel(ctx context.Context, who Identity, what string) ([]Reply, error) {
	var (
		want models.CaptureKind
		text string
	)
	switch what {
	case CancelAnswer:
		want, text = models.CaptureAnswer, textAnswerCancelled
	case CancelSupport:
		want, text = models.CaptureSupport, textSupportCancelled
	default:
		return nil, fmt.Errorf("conversation: unknown cancel target %q", what)
	}

	p, replies, err := e.registered(ctx, who)
	if replies != nil || err != nil {
		return replies, err
	}
	if p.Capture.Kind() == want {
		if err := e.participants.SetCapture(ctx, p.ID, models.Idle()); err != nil {
			return nil, fmt.Errorf("cancel capture: %w", err)
		}
	}
	logger.LogEvent(ctx, logger.SVCParticipants, slog.LevelInfo, "capture.cancel",
		slog.String("outcome", "cancelled"),
		slog.String("state", what),
		slog.Int64("user_id", p.ID),
	)
	return []Reply{{Text: text, Edit: true}}, nil
}

// HandleText interprets free text according to the pending capture.
func (e *Engine) HandleText(ctx context.Context, who Identity, text string) ([]Reply, error) {
	p, replies, err := e.registered(ctx, who)
	if replies != nil || err != nil {
		return replies, err
	}

	if !p.Capture.IsIdle() && strings.TrimSpace(text) == "" {
		return []Reply{{Text: textEmptyInput}}, nil
	}
	switch p.Capture.Kind() {
	case models.CaptureSupport:
		return e.submitTicket(ctx, p, who, text)
	case models.CaptureAnswer:
		slot, _ := p.Capture.Slot()
		return e.submitAnswer(ctx, p, slot, text)
	default:
		return []Reply{{Text: textHint, Menu: true}}, nil
	}
}

func (e *Engine) submitTicket(ctx context.Context, p *models.Participant, who Identity, body string) ([]Reply, error) {
	now := e.now().UTC()
	ticket := models.SupportTicket{
		ID:            e.newID(),
		ParticipantID: p.ID,
		Username:      firstNonEmpty(who.Username, p.Username),
		Body:          body,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.tickets.Append(ctx, &ticket); err != nil {
		return nil, fmt.Errorf("append ticket: %w", err)
	}
	if err := e.participants.SetCapture(ctx, p.ID, models.Idle()); err != nil {
		return nil, fmt.Errorf("clear support capture: %w", err)
	}
	metrics.RecordTicket()

	e.notifier.NotifyTicket(ctx, ticket)
	logger.LogEvent(ctx, logger.Tickets, slog.LevelInfo, "ticket.created",
		slog.String("ticket_id", ticket.ID.String()),
		slog.Int64("user_id", ticket.ParticipantID),
		slog.String("username", ticket.Username),
		slog.String("payload", logger.SanitizeLimit(ticket.Body, 4096)),
	)
	logger.LogEvent(ctx, logger.SVCSupport, slog.LevelInfo, "support.saved",
		slog.String("status", "ok"),
		slog.String("ticket_id", ticket.ID.String()),
		slog.Int64("user_id", p.ID),
	)
	return []Reply{{Text: textSupportSaved}}, nil
}

func (e *Engine) submitAnswer(ctx context.Context, p *models.Participant, slot models.Slot, text string) ([]Reply, error) {
	today := e.calendar.Day()
	if slot.Day != today {
		if err := e.participants.SetCapture(ctx, p.ID, models.Idle()); err != nil {
			return nil, fmt.Errorf("clear stale capture: %w", err)
		}
		e.logAnswer(ctx, slog.LevelInfo, "answer.submit", p.ID, slot, "expired")
		metrics.RecordAnswer(slot.Task, "expired")
		return []Reply{e.expired(today, slot)}, nil
	}

	if !p.Answered(slot) {
		err := e.participants.SaveAnswer(ctx, p.ID, slot, text)
		switch {
		case err == nil:
			p.Answers = withAnswer(p.Answers, slot, text)
			e.logAnswer(ctx, slog.LevelInfo, "answer.submit", p.ID, slot, "ok")
			metrics.RecordAnswer(slot.Task, "saved")
			return []Reply{e.answerSaved(p, today)}, nil
		case !errors.Is(err, models.ErrSlotLocked):
			return nil, fmt.Errorf("save answer %s: %w", slot, err)
		}
	}

	if err := e.participants.SetCapture(ctx, p.ID, models.Idle()); err != nil {
		return nil, fmt.Errorf("clear locked capture: %w", err)
	}
	e.logAnswer(ctx, slog.LevelInfo, "answer.submit", p.ID, slot, "locked")
	metrics.RecordAnswer(slot.Task, "locked")
	return []Reply{{Text: fmt.Sprintf(textLocked, slot)}}, nil
}

func (e *Engine) answerSaved(p *models.Participant, today int) Reply {
	if !p.DayComplete(today) {
		return Reply{Text: textAnswerSaved}
	}
	if e.calendar.IsFinal(today) {
		return Reply{Text: textFinalDay}
	}
	return Reply{Text: fmt.Sprintf(textDayComplete, today, e.month)}
}

// Stats renders the operator summary for the current day.
func (e *Engine) Stats(ctx context.Context) ([]Reply, error) {
	total, err := e.participants.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	day := e.calendar.Day()
	perTask := make([]int, 0, models.LastTask)
	for _, slot := range models.DaySlots(day) {
		n, err := e.participants.CountAnswers(ctx, slot)
		if err != nil {
			return nil, fmt.Errorf("count answers %s: %w", slot, err)
		}
		perTask = append(perTask, n)
	}
	tickets, err := e.tickets.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}
	return []Reply{{
		Text: fmt.Sprintf(textStats, total, day, format.Escape(e.month), perTask[0], perTask[1], tickets),
		HTML: true,
	}}, nil
}

// MarkUnreachable flags the participant as blocked after the platform
// refused delivery. Unknown identities are ignored.
func (e *Engine) MarkUnreachable(ctx context.Context, id int64) error {
	err := e.participants.MarkBlocked(ctx, id)
	if err != nil && !errors.Is(err, models.ErrParticipantNotFound) {
		return fmt.Errorf("mark blocked: %w", err)
	}
	logger.LogEvent(ctx, logger.SVCParticipants, slog.LevelInfo, "participant.blocked",
		slog.Int64("user_id", id),
		slog.Bool("known", err == nil),
	)
	return nil
}

// registered loads the participant. For unknown identities it returns the
// registration prompt instead and creates nothing.
func (e *Engine) registered(ctx context.Context, who Identity) (*models.Participant, []Reply, error) {
	p, err := e.participants.Find(ctx, who.ID)
	switch {
	case err == nil:
		return p, nil, nil
	case errors.Is(err, models.ErrParticipantNotFound):
		logger.LogEvent(ctx, logger.SVCParticipants, slog.LevelDebug, "participant.unknown",
			slog.String("outcome", "prompted"),
			slog.Int64("user_id", who.ID),
		)
		return nil, []Reply{e.registrationPrompt()}, nil
	default:
		return nil, nil, fmt.Errorf("find participant: %w", err)
	}
}

func (e *Engine) registrationPrompt() Reply {
	text := textNotRegistered
	if e.chatURL != "" {
		text += fmt.Sprintf(textNotRegisteredChat, format.Link(e.chatURL, "чате"))
	}
	return Reply{Text: text, HTML: true}
}

func (e *Engine) expired(today int, slot models.Slot) Reply {
	return Reply{Text: fmt.Sprintf(textExpired, today, e.month, slot)}
}

func locked(slot models.Slot) Reply {
	return Reply{
		Text:   fmt.Sprintf(textLocked, slot),
		Inline: [][]Button{{{Text: labelBack, Unique: KeyBack, Data: KeyBack}}},
	}
}

func (e *Engine) logAnswer(ctx context.Context, level slog.Level, event string, id int64, slot models.Slot, outcome string) {
	logger.LogEvent(ctx, logger.SVCParticipants, level, event,
		slog.String("outcome", outcome),
		slog.Int64("user_id", id),
		slog.String("slot", slot.String()),
	)
}

func withAnswer(answers map[models.Slot]string, slot models.Slot, text string) map[models.Slot]string {
	if answers == nil {
		answers = make(map[models.Slot]string, 1)
	}
	answers[slot] = text
	return answers
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
