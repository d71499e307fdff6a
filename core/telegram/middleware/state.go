package middleware

import (
	"log/slog"
	"time"

	"github.com/m3rciful/adventbot/core/logger"
	tghelpers "github.com/m3rciful/adventbot/core/telegram/helpers"
	"github.com/m3rciful/adventbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// slowLockWait marks lock waits worth a debug line.
const slowLockWait = 500 * time.Millisecond

// Serialize runs updates of the same sender one at a time.
// Updates without a sender pass through unlocked.
func Serialize(locker *state.Locker) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if locker == nil || user == nil {
				return next(c)
			}
			start := time.Now()
			unlock := locker.Lock(user.ID)
			defer unlock()
			if waited := time.Since(start); waited > slowLockWait {
				logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelDebug, "update.serialized",
					slog.Duration("wait", logger.RoundMS(waited)),
				)
			}
			return next(c)
		}
	}
}
