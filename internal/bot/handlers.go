// Package bot adapts Telegram updates to the conversation engine and renders
// its replies.
package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/adventbot/core/logger"
	"github.com/m3rciful/adventbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/adventbot/core/telegram/helpers"
	"github.com/m3rciful/adventbot/core/telegram/keyboard"
	"github.com/m3rciful/adventbot/internal/conversation"
	"github.com/m3rciful/adventbot/internal/models"

	tele "gopkg.in/telebot.v4"
)

// Messenger is the outbound API used outside the update's own reply path.
// *tele.Bot implements it.
type Messenger interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
	Edit(msg tele.Editable, what any, opts ...any) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// Handlers binds the engine to telebot handler functions.
type Handlers struct {
	engine    *conversation.Engine
	messenger Messenger
}

// New creates the handler set.
func New(engine *conversation.Engine, messenger Messenger) *Handlers {
	return &Handlers{engine: engine, messenger: messenger}
}

// Start handles /start.
func (h *Handlers) Start(c tele.Context) error {
	return render(c, h.engine.Start())
}

// FAQ handles /faq.
func (h *Handlers) FAQ(c tele.Context) error {
	return render(c, h.engine.FAQ())
}

// Rules handles /rules.
func (h *Handlers) Rules(c tele.Context) error {
	return render(c, h.engine.Rules())
}

// Register handles the registration trigger. An interim status message is
// sent first and then replaced with the result.
func (h *Handlers) Register(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "register")
	status, err := h.messenger.Send(c.Recipient(), conversation.TextPleaseWait)
	if err != nil {
		return err
	}

	replies, err := h.engine.Register(ctx, identity(c))
	if err != nil {
		if delErr := h.messenger.Delete(status); delErr != nil {
			logger.LogEvent(ctx, nil, slog.LevelDebug, "register.status_cleanup",
				slog.String("err", delErr.Error()),
			)
		}
		return err
	}

	rest := replies[:0:0]
	for _, r := range replies {
		if !r.Status {
			rest = append(rest, r)
			continue
		}
		if _, err := h.messenger.Edit(status, r.Text, sendOptions(r)); err != nil {
			return err
		}
	}
	return render(c, rest)
}

// Support handles /support.
func (h *Handlers) Support(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "support")
	replies, err := h.engine.RequestSupport(ctx, identity(c))
	if err != nil {
		return err
	}
	return render(c, replies)
}

// TaskPicker handles the "submit answer" menu button.
func (h *Handlers) TaskPicker(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "task_picker")
	replies, err := h.engine.TaskPicker(ctx, identity(c))
	if err != nil {
		return err
	}
	return render(c, replies)
}

// Text handles free text that matched no command or trigger.
func (h *Handlers) Text(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := h.engine.HandleText(ctx, identity(c), c.Text())
	if err != nil {
		return err
	}
	return render(c, replies)
}

// Stats handles the operator /stats command.
func (h *Handlers) Stats(c tele.Context) error {
	replies, err := h.engine.Stats(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	return render(c, replies)
}

// SelectTask handles the task buttons of the picker.
func (h *Handlers) SelectTask(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := h.engine.SelectSlot(ctx, identity(c), callbacks.CallbackPayload(c))
	if errors.Is(err, models.ErrInvalidSlot) {
		logger.LogEvent(ctx, nil, slog.LevelWarn, "callback.invalid_slot",
			slog.String("payload", logger.SanitizeLimit(callbacks.CallbackPayload(c), 64)),
		)
		return c.Send(conversation.TextUnavailable)
	}
	if err != nil {
		return err
	}
	return render(c, replies)
}

// Cancel handles the cancel buttons of the answer and support prompts.
func (h *Handlers) Cancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	switch what := callbacks.CallbackPayload(c); what {
	case conversation.CancelAnswer, conversation.CancelSupport:
		replies, err := h.engine.Cancel(ctx, identity(c), what)
		if err != nil {
			return err
		}
		return render(c, replies)
	default:
		return c.Send(conversation.TextUnavailable)
	}
}

// Back handles the back button under a locked slot.
func (h *Handlers) Back(c tele.Context) error {
	replies, err := h.engine.Back(tghelpers.BuildContext(c), identity(c))
	if err != nil {
		return err
	}
	return render(c, replies)
}

// Unreachable marks the sender blocked after Telegram refused delivery.
func (h *Handlers) Unreachable(c tele.Context, _ error) {
	u := c.Sender()
	if u == nil {
		return
	}
	ctx := tghelpers.BuildContext(c)
	if err := h.engine.MarkUnreachable(ctx, u.ID); err != nil {
		logger.LogEvent(ctx, logger.SVCParticipants, slog.LevelError, "participant.block_failed",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}

// UpdateContext returns the request context of c for hooks outside handlers.
func UpdateContext(c tele.Context) context.Context {
	return tghelpers.BuildContext(c)
}

func identity(c tele.Context) conversation.Identity {
	u := c.Sender()
	if u == nil {
		return conversation.Identity{}
	}
	return conversation.Identity{ID: u.ID, FirstName: u.FirstName, Username: u.Username}
}

func render(c tele.Context, replies []conversation.Reply) error {
	for _, r := range replies {
		markup := markupFor(r)
		var err error
		switch {
		case r.Edit && r.HTML:
			err = tghelpers.EditHTML(c, r.Text, markup)
		case r.Edit:
			err = tghelpers.EditText(c, r.Text, markup)
		default:
			err = c.Send(r.Text, sendOptions(r))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func sendOptions(r conversation.Reply) *tele.SendOptions {
	opts := &tele.SendOptions{ReplyMarkup: markupFor(r), DisableWebPagePreview: true}
	if r.HTML {
		opts.ParseMode = tele.ModeHTML
	}
	return opts
}

func markupFor(r conversation.Reply) *tele.ReplyMarkup {
	switch {
	case len(r.Inline) > 0:
		rows := make([][]keyboard.InlineBtn, 0, len(r.Inline))
		for _, row := range r.Inline {
			btns := make([]keyboard.InlineBtn, 0, len(row))
			for _, b := range row {
				btns = append(btns, keyboard.InlineBtn{Text: b.Text, Unique: b.Unique, Data: b.Data})
			}
			rows = append(rows, btns)
		}
		return keyboard.InlineButtonsRows(rows...)
	case r.Menu:
		return keyboard.ReplyButtons([]string{conversation.MenuSubmit})
	}
	return nil
}
