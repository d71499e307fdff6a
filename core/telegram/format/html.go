package format

import (
	"html"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Escape makes arbitrary text safe for Telegram HTML parse mode.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Bold wraps escaped text in <b>.
func Bold(text string) string {
	return "<b>" + Escape(text) + "</b>"
}

// Code wraps escaped text in <code>.
func Code(text string) string {
	return "<code>" + Escape(text) + "</code>"
}

// Pre wraps escaped text in <pre>.
func Pre(text string) string {
	return "<pre>" + Escape(text) + "</pre>"
}

// Link renders an anchor; the label is escaped.
func Link(url, label string) string {
	return `<a href="` + html.EscapeString(url) + `">` + Escape(label) + "</a>"
}

// UserMention renders "@username" or a tg://user link when the handle is unknown.
func UserMention(id int64, username, fallback string) string {
	if u := strings.TrimPrefix(strings.TrimSpace(username), "@"); u != "" {
		return Escape("@" + u)
	}
	if fallback == "" {
		fallback = "user"
	}
	return Link("tg://user?id="+strconv.FormatInt(id, 10), fallback)
}

// Truncate cuts text to at most limit runes, marking the cut with an ellipsis.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-1]) + "…"
}
