package ui

import (
	"log/slog"

	tghelpers "github.com/m3rciful/adventbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// FallbackProvider exposes handlers used when incoming updates cannot be
// mapped to commands, text triggers or callbacks.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownMedia() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// StaticFallbacks answers unmatched updates with fixed texts.
// An empty text makes the corresponding handler a no-op.
type StaticFallbacks struct {
	Text     string
	Media    string
	Callback string
}

// UnknownText replies with the Text hint.
func (f StaticFallbacks) UnknownText() tele.HandlerFunc {
	return reply(f.Text, "unknown_text")
}

// UnknownMedia replies with the Media hint.
func (f StaticFallbacks) UnknownMedia() tele.HandlerFunc {
	return reply(f.Media, "unknown_media")
}

// UnknownCallback shows Callback as a toast.
func (f StaticFallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.Logger(c).LogAttrs(tghelpers.BuildContext(c), slog.LevelDebug, "",
			slog.String("event", "fallback.callback"),
		)
		return c.Respond(&tele.CallbackResponse{Text: f.Callback})
	}
}

func reply(text, event string) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.Logger(c).LogAttrs(tghelpers.BuildContext(c), slog.LevelDebug, "",
			slog.String("event", "fallback."+event),
		)
		if text == "" {
			return nil
		}
		return c.Send(text)
	}
}
