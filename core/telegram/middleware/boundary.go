package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/adventbot/core/logger"
	"github.com/m3rciful/adventbot/core/metrics"
	tghelpers "github.com/m3rciful/adventbot/core/telegram/helpers"
	"github.com/m3rciful/adventbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// PanicError carries a recovered panic value and the stack at recovery.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Code names the error for handler summaries.
func (e *PanicError) Code() string { return "PANIC" }

// BoundaryOptions configures ErrorBoundary.
type BoundaryOptions struct {
	// Apology is sent to the user after a failure. Empty disables it.
	Apology string
	// OnError is called once per failure that is not an unreachable recipient.
	OnError func(c tele.Context, err error)
	// OnUnreachable is called when delivery failed because the user blocked
	// the bot or deleted the account. No apology is attempted then.
	OnUnreachable func(c tele.Context, err error)
	// Unreachable classifies errors; netutil.IsRecipientUnreachable by default.
	Unreachable func(err error) bool
}

// ErrorBoundary is the single failure handler wrapped around every update.
// It turns panics into errors, logs the failure with the update identifiers,
// hands it to OnError or OnUnreachable and replies with the apology. The
// error is consumed so telebot's OnError never sees it.
func ErrorBoundary(opts BoundaryOptions) tele.MiddlewareFunc {
	unreachable := opts.Unreachable
	if unreachable == nil {
		unreachable = netutil.IsRecipientUnreachable
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			err := callSafely(next, c)
			if err == nil {
				return nil
			}

			ctx := tghelpers.BuildContext(c)
			kind := "error"
			var panicErr *PanicError
			switch {
			case errors.As(err, &panicErr):
				kind = "panic"
			case unreachable(err):
				kind = "unreachable"
			}
			metrics.RecordHandlerError(kind)

			attrs := []slog.Attr{
				slog.String("status", "fail"),
				slog.String("kind", kind),
				slog.String("handler", logger.HandlerFrom(ctx)),
				slog.String("err", logger.SanitizeLimit(err.Error(), 512)),
			}
			if panicErr != nil {
				attrs = append(attrs, slog.String("stack", string(panicErr.Stack)))
			}

			if kind == "unreachable" {
				logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "handler.unreachable", attrs...)
				if opts.OnUnreachable != nil {
					opts.OnUnreachable(c, err)
				}
				return nil
			}

			logger.LogEvent(ctx, logger.TG, slog.LevelError, "handler.failed", attrs...)
			if opts.OnError != nil {
				opts.OnError(c, err)
			}
			if c.Callback() != nil {
				_ = c.Respond()
			}
			if opts.Apology != "" {
				if sendErr := c.Send(opts.Apology); sendErr != nil {
					logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "handler.apology_failed",
						slog.String("err", logger.SanitizeLimit(sendErr.Error(), 256)),
					)
				}
			}
			return nil
		}
	}
}

func callSafely(next tele.HandlerFunc, c tele.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return next(c)
}
