package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/m3rciful/adventbot/core/logger"
	"github.com/m3rciful/adventbot/core/telegram/sender"
	"github.com/m3rciful/adventbot/internal/models"

	tele "gopkg.in/telebot.v4"
)

type sent struct {
	to   string
	text string
	opts []any
}

type fakeBot struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (b *fakeBot) Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	b.msgs = append(b.msgs, sent{to: to.Recipient(), text: what.(string), opts: opts})
	return &tele.Message{ID: len(b.msgs)}, nil
}

func (b *fakeBot) messages() []sent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sent(nil), b.msgs...)
}

func TestNotifyTicketEscapesUserText(t *testing.T) {
	bot := &fakeBot{}
	n := New(bot, nil, 555)
	n.NotifyTicket(context.Background(), models.SupportTicket{
		ID:            uuid.New(),
		ParticipantID: 42,
		Username:      "alice",
		Body:          "<script>x</script> & more",
	})

	msgs := bot.messages()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d", len(msgs))
	}
	m := msgs[0]
	if m.to != "555" {
		t.Fatalf("recipient = %s", m.to)
	}
	for _, want := range []string{"<b>❗Обращение в поддержку</b>", "Пользователь: @alice", "&lt;script&gt;x&lt;/script&gt; &amp; more"} {
		if !strings.Contains(m.text, want) {
			t.Fatalf("text %q missing %q", m.text, want)
		}
	}
	opts, ok := m.opts[0].(*tele.SendOptions)
	if !ok || opts.ParseMode != tele.ModeHTML {
		t.Fatalf("opts = %+v", m.opts)
	}
}

func TestNotifyTicketWithoutUsername(t *testing.T) {
	bot := &fakeBot{}
	New(bot, nil, 555).NotifyTicket(context.Background(), models.SupportTicket{ParticipantID: 42, Body: "hi"})
	if text := bot.messages()[0].text; !strings.Contains(text, "tg://user?id=42") {
		t.Fatalf("text = %q", text)
	}
}

func TestNotifyErrorRedactsToken(t *testing.T) {
	bot := &fakeBot{}
	n := New(bot, nil, 555)
	ctx := logger.WithHandler(context.Background(), "support")
	n.NotifyError(ctx, 9001, errors.New(`Post "https://api.telegram.org/bot123456:AAH-secret_token/sendMessage": timeout`))

	text := bot.messages()[0].text
	if strings.Contains(text, "AAH-secret_token") {
		t.Fatalf("token leaked: %q", text)
	}
	for _, want := range []string{"ОШИБКА БОТА", "Update ID: 9001", "<code>support</code>", "<pre>"} {
		if !strings.Contains(text, want) {
			t.Fatalf("text %q missing %q", text, want)
		}
	}
}

func TestNotifyNeverFails(t *testing.T) {
	bot := &fakeBot{err: errors.New("forbidden")}
	n := New(bot, nil, 555)
	n.NotifyError(context.Background(), 1, errors.New("boom"))
	n.NotifyTicket(context.Background(), models.SupportTicket{Body: "x"})
	n.NotifyError(context.Background(), 1, nil)
}

func TestNotifyDroppedWithoutAdmin(t *testing.T) {
	bot := &fakeBot{}
	New(bot, nil, 0).NotifyTicket(context.Background(), models.SupportTicket{Body: "x"})
	if len(bot.messages()) != 0 {
		t.Fatal("message sent without admin chat")
	}
}

func TestNotifyThroughDispatcher(t *testing.T) {
	bot := &fakeBot{}
	d := sender.NewDispatcher(sender.Options{Workers: 1, QueueSize: 4})
	n := New(bot, d, 555)
	n.NotifyTicket(context.Background(), models.SupportTicket{ParticipantID: 1, Username: "u", Body: "one"})
	n.NotifyTicket(context.Background(), models.SupportTicket{ParticipantID: 2, Username: "v", Body: "two"})
	d.Close()

	if got := len(bot.messages()); got != 2 {
		t.Fatalf("delivered = %d, want 2", got)
	}

	// Closed queue: dropped and logged, no panic.
	n.NotifyTicket(context.Background(), models.SupportTicket{Body: "late"})
	if got := len(bot.messages()); got != 2 {
		t.Fatalf("delivered after close = %d", got)
	}
}
