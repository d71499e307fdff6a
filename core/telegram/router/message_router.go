package router

import (
	"time"

	tg "github.com/m3rciful/adventbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text and media updates.
type TextOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// TextRoutes builds the free-text and media routes. Text is matched, in
// order, against commands (for aliases telebot does not see), exact text
// triggers, the registry fallback and finally UnknownText.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
			if h, ok := reg.LookupText(text); ok {
				return handleWithSummary(c, "text."+normalizeHandlerName(text), start, func() error {
					return h(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}
		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnknownMedia != nil {
			return handleWithSummary(c, "unknown_media", start, func() error {
				return opts.UnknownMedia(c)
			})
		}
		logHandlerSummary(c, "unknown_media", start, "skip", nil)
		return nil
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: textHandler},
		{Endpoint: tele.OnMedia, Handler: mediaHandler},
		{Endpoint: tele.OnSticker, Handler: mediaHandler},
	}
}
