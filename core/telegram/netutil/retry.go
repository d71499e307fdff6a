package netutil

import (
	"errors"
	"net"
	"net/url"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ShouldRetry reports whether a network error is worth retrying.
// Only transient dial/timeout failures produced by net/http qualify.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() || opErr.Op == "dial" {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return ShouldRetry(urlErr.Err)
		}
	}
	return false
}

// IsRecipientUnreachable reports whether Telegram refused delivery because
// the user blocked the bot, deleted the account or never opened the chat.
func IsRecipientUnreachable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, tele.ErrBlockedByUser) ||
		errors.Is(err, tele.ErrUserIsDeactivated) ||
		errors.Is(err, tele.ErrNotStartedByUser) {
		return true
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		desc := strings.ToLower(apiErr.Description)
		return strings.Contains(desc, "blocked") || strings.Contains(desc, "deactivated")
	}
	return false
}
