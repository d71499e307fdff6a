package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/adventbot/internal/conversation"
	"github.com/m3rciful/adventbot/internal/models"
	"github.com/m3rciful/adventbot/internal/storage/memory"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the parts of tele.Context the handlers touch.
type fakeContext struct {
	tele.Context

	update tele.Update
	store  map[string]any
	sent   []outbound
	edited []outbound
}

type outbound struct {
	text string
	opts *tele.SendOptions
}

var tester = &tele.User{ID: 42, FirstName: "Alice", Username: "alice"}

func textUpdate(text string) *fakeContext {
	return &fakeContext{
		update: tele.Update{ID: 7, Message: &tele.Message{
			Sender: tester,
			Chat:   &tele.Chat{ID: tester.ID, Type: tele.ChatPrivate},
			Text:   text,
		}},
		store: make(map[string]any),
	}
}

func callbackUpdate(unique, data string) *fakeContext {
	return &fakeContext{
		update: tele.Update{ID: 8, Callback: &tele.Callback{
			Sender:  tester,
			Unique:  unique,
			Data:    data,
			Message: &tele.Message{ID: 300, Chat: &tele.Chat{ID: tester.ID}},
		}},
		store: make(map[string]any),
	}
}

func (f *fakeContext) Update() tele.Update       { return f.update }
func (f *fakeContext) Callback() *tele.Callback  { return f.update.Callback }
func (f *fakeContext) Get(key string) any        { return f.store[key] }
func (f *fakeContext) Set(key string, v any)     { f.store[key] = v }
func (f *fakeContext) Recipient() tele.Recipient { return f.Chat() }

func (f *fakeContext) Sender() *tele.User {
	if f.update.Callback != nil {
		return f.update.Callback.Sender
	}
	return f.update.Message.Sender
}

func (f *fakeContext) Chat() *tele.Chat {
	if f.update.Callback != nil {
		return f.update.Callback.Message.Chat
	}
	return f.update.Message.Chat
}

func (f *fakeContext) Text() string {
	if f.update.Message != nil {
		return f.update.Message.Text
	}
	return ""
}

func (f *fakeContext) Send(what any, opts ...any) error {
	f.sent = append(f.sent, toOutbound(what, opts))
	return nil
}

func (f *fakeContext) Edit(what any, opts ...any) error {
	f.edited = append(f.edited, toOutbound(what, opts))
	return nil
}

func toOutbound(what any, opts []any) outbound {
	o := outbound{text: what.(string)}
	if len(opts) > 0 {
		o.opts, _ = opts[0].(*tele.SendOptions)
	}
	return o
}

type fakeMessenger struct {
	sent    []string
	edits   []string
	deleted int
}

func (m *fakeMessenger) Send(_ tele.Recipient, what any, _ ...any) (*tele.Message, error) {
	m.sent = append(m.sent, what.(string))
	return &tele.Message{ID: len(m.sent), Chat: &tele.Chat{ID: tester.ID}}, nil
}

func (m *fakeMessenger) Edit(_ tele.Editable, what any, _ ...any) (*tele.Message, error) {
	m.edits = append(m.edits, what.(string))
	return &tele.Message{}, nil
}

func (m *fakeMessenger) Delete(tele.Editable) error {
	m.deleted++
	return nil
}

type fixedCalendar int

func (d fixedCalendar) Day() int             { return int(d) }
func (d fixedCalendar) Active(day int) bool  { return day >= 7 && day <= 18 }
func (d fixedCalendar) IsFinal(day int) bool { return day == 18 }

type nopNotifier struct{}

func (nopNotifier) NotifyTicket(context.Context, models.SupportTicket) {}

func newHandlers(t *testing.T, people conversation.Participants) (*Handlers, *fakeMessenger) {
	t.Helper()
	engine, err := conversation.New(conversation.Options{
		Participants: people,
		Tickets:      memory.NewTickets(),
		Notifier:     nopNotifier{},
		Calendar:     fixedCalendar(9),
	})
	if err != nil {
		t.Fatal(err)
	}
	m := &fakeMessenger{}
	return New(engine, m), m
}

func TestRegisterReplacesStatusMessage(t *testing.T) {
	people := memory.NewParticipants()
	h, m := newHandlers(t, people)
	c := callbackUpdate(conversation.KeyStart, conversation.KeyStart)

	if err := h.Register(c); err != nil {
		t.Fatal(err)
	}
	if len(m.sent) != 1 || m.sent[0] != conversation.TextPleaseWait {
		t.Fatalf("status sends = %v", m.sent)
	}
	if len(m.edits) != 1 || !strings.Contains(m.edits[0], "добро пожаловать") {
		t.Fatalf("status edits = %v", m.edits)
	}
	if len(c.sent) != 1 {
		t.Fatalf("sent = %+v", c.sent)
	}
	markup := c.sent[0].opts.ReplyMarkup
	if markup == nil || len(markup.ReplyKeyboard) != 1 || markup.ReplyKeyboard[0][0].Text != conversation.MenuSubmit {
		t.Fatalf("menu markup = %+v", markup)
	}
	if _, err := people.Find(context.Background(), tester.ID); err != nil {
		t.Fatalf("participant not stored: %v", err)
	}
}

type brokenStore struct{ *memory.Participants }

func (brokenStore) Find(context.Context, int64) (*models.Participant, error) {
	return nil, errors.New("db down")
}

func TestRegisterFailureDeletesStatus(t *testing.T) {
	h, m := newHandlers(t, brokenStore{memory.NewParticipants()})
	if err := h.Register(callbackUpdate(conversation.KeyStart, "")); err == nil {
		t.Fatal("expected error")
	}
	if m.deleted != 1 {
		t.Fatalf("deleted = %d", m.deleted)
	}
}

func TestPickerAndTaskSelection(t *testing.T) {
	people := memory.NewParticipants()
	h, _ := newHandlers(t, people)
	_ = people.Create(context.Background(), &models.Participant{ID: tester.ID})

	c := textUpdate(conversation.MenuSubmit)
	if err := h.TaskPicker(c); err != nil {
		t.Fatal(err)
	}
	inline := c.sent[0].opts.ReplyMarkup.InlineKeyboard
	if len(inline) != 1 || len(inline[0]) != 2 || inline[0][1].Data != "9.2" || inline[0][1].Unique != conversation.KeyTask {
		t.Fatalf("inline = %+v", inline)
	}

	cb := callbackUpdate(conversation.KeyTask, "9.2")
	if err := h.SelectTask(cb); err != nil {
		t.Fatal(err)
	}
	if cb.sent[0].text != "Напиши ответ на задачу 9.2" {
		t.Fatalf("prompt = %q", cb.sent[0].text)
	}

	if err := h.Text(textUpdate("answer")); err != nil {
		t.Fatal(err)
	}
	p, _ := people.Find(context.Background(), tester.ID)
	if p.Answers[models.Slot{Day: 9, Task: 2}] != "answer" {
		t.Fatalf("answers = %v", p.Answers)
	}
}

func TestSelectTaskRejectsGarbage(t *testing.T) {
	h, _ := newHandlers(t, memory.NewParticipants())
	cb := callbackUpdate(conversation.KeyTask, "99.9")
	if err := h.SelectTask(cb); err != nil {
		t.Fatalf("invalid slot must not reach the error boundary: %v", err)
	}
	if len(cb.sent) != 1 || cb.sent[0].text != conversation.TextUnavailable {
		t.Fatalf("sent = %+v", cb.sent)
	}
}

func TestCancelEditsPrompt(t *testing.T) {
	people := memory.NewParticipants()
	h, _ := newHandlers(t, people)
	_ = people.Create(context.Background(), &models.Participant{ID: tester.ID})
	_ = people.SetCapture(context.Background(), tester.ID, models.AwaitingSupport())

	cb := callbackUpdate(conversation.KeyCancel, conversation.CancelSupport)
	if err := h.Cancel(cb); err != nil {
		t.Fatal(err)
	}
	if len(cb.edited) != 1 || cb.edited[0].text != "Запрос отменён ✅" {
		t.Fatalf("edited = %+v", cb.edited)
	}
	p, _ := people.Find(context.Background(), tester.ID)
	if !p.Capture.IsIdle() {
		t.Fatal("capture kept")
	}
}

func TestUnreachableMarksBlocked(t *testing.T) {
	people := memory.NewParticipants()
	h, _ := newHandlers(t, people)
	_ = people.Create(context.Background(), &models.Participant{ID: tester.ID})

	h.Unreachable(textUpdate("hi"), tele.ErrBlockedByUser)
	p, _ := people.Find(context.Background(), tester.ID)
	if !p.Blocked {
		t.Fatal("participant not blocked")
	}
}

func TestStartSendsHTMLIntro(t *testing.T) {
	h, _ := newHandlers(t, memory.NewParticipants())
	c := textUpdate("/start")
	if err := h.Start(c); err != nil {
		t.Fatal(err)
	}
	o := c.sent[0]
	if o.opts.ParseMode != tele.ModeHTML || o.opts.ReplyMarkup.InlineKeyboard[0][0].Unique != conversation.KeyStart {
		t.Fatalf("intro = %+v", o.opts)
	}
}
