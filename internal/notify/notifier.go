// Package notify delivers error alerts and support tickets to the operator chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/adventbot/core/logger"
	"github.com/m3rciful/adventbot/core/metrics"
	"github.com/m3rciful/adventbot/core/telegram/format"
	"github.com/m3rciful/adventbot/core/telegram/middleware"
	"github.com/m3rciful/adventbot/core/telegram/sender"
	"github.com/m3rciful/adventbot/internal/models"

	tele "gopkg.in/telebot.v4"
)

// Telegram rejects messages over 4096 characters; keep room for markup.
const (
	maxErrorRunes  = 3000
	maxTicketRunes = 3500
)

const (
	kindError  = "error"
	kindTicket = "ticket"
)

// Sender is the part of *tele.Bot used for delivery.
type Sender interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
}

// Queue runs deliveries asynchronously; *sender.Dispatcher implements it.
type Queue interface {
	Enqueue(ctx context.Context, action string, run func(ctx context.Context) error) error
}

// Notifier formats alerts as HTML and queues them for the operator. It never
// returns errors: failures are logged and counted.
type Notifier struct {
	bot     Sender
	queue   Queue
	adminID int64
}

// New builds a notifier for adminID. With adminID zero every notification is
// logged and dropped.
func New(bot Sender, queue Queue, adminID int64) *Notifier {
	return &Notifier{bot: bot, queue: queue, adminID: adminID}
}

// NotifyError reports a handler failure with the originating update id.
func (n *Notifier) NotifyError(ctx context.Context, updateID int, err error) {
	if err == nil {
		return
	}
	var b strings.Builder
	b.WriteString(format.Bold("❗❗❗ ОШИБКА БОТА") + "\n")
	fmt.Fprintf(&b, "Update ID: %d\n", updateID)
	if handler := logger.HandlerFrom(ctx); handler != "" {
		fmt.Fprintf(&b, "Handler: %s\n", format.Code(handler))
	}
	if rid := logger.RIDFrom(ctx); rid != "" {
		fmt.Fprintf(&b, "RID: %s\n", format.Code(logger.CompactRID(rid)))
	}
	var panicErr *middleware.PanicError
	if errors.As(err, &panicErr) {
		b.WriteString("Kind: panic\n")
	}
	b.WriteString(format.Pre(format.Truncate(sender.RedactToken(err), maxErrorRunes)))
	n.deliver(ctx, kindError, b.String())
}

// NotifyTicket relays a support ticket.
func (n *Notifier) NotifyTicket(ctx context.Context, t models.SupportTicket) {
	text := fmt.Sprintf("%s\nПользователь: %s\nID: %s\nТекст: %s",
		format.Bold("❗Обращение в поддержку"),
		format.UserMention(t.ParticipantID, t.Username, "участник"),
		format.Code(fmt.Sprint(t.ParticipantID)),
		format.Escape(format.Truncate(t.Body, maxTicketRunes)),
	)
	n.deliver(ctx, kindTicket, text)
}

func (n *Notifier) deliver(ctx context.Context, kind, text string) {
	if n.adminID == 0 || n.bot == nil {
		logger.LogEvent(ctx, logger.Notify, slog.LevelWarn, "notify.dropped",
			slog.String("status", "skip"),
			slog.String("kind", kind),
			slog.String("reason", "no_admin"),
		)
		metrics.RecordNotification(kind, errNoAdmin)
		return
	}

	to := tele.ChatID(n.adminID)
	run := func(context.Context) error {
		_, err := n.bot.Send(to, text, &tele.SendOptions{ParseMode: tele.ModeHTML, DisableWebPagePreview: true})
		metrics.RecordNotification(kind, err)
		if err != nil {
			logger.LogEvent(ctx, logger.Notify, slog.LevelWarn, "notify.failed",
				slog.String("status", "fail"),
				slog.String("kind", kind),
				slog.String("err", logger.SanitizeLimit(sender.RedactToken(err), 256)),
			)
			return err
		}
		logger.LogEvent(ctx, logger.Notify, slog.LevelDebug, "notify.sent",
			slog.String("status", "ok"),
			slog.String("kind", kind),
		)
		return nil
	}

	if n.queue == nil {
		_ = run(ctx)
		return
	}
	if err := n.queue.Enqueue(ctx, "notify."+kind, run); err != nil {
		metrics.RecordNotification(kind, err)
		logger.LogEvent(ctx, logger.Notify, slog.LevelWarn, "notify.enqueue_failed",
			slog.String("status", "fail"),
			slog.String("kind", kind),
			slog.String("err", err.Error()),
		)
	}
}

var errNoAdmin = errors.New("notify: admin chat not configured")
