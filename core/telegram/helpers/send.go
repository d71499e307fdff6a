package helpers

import (
	tele "gopkg.in/telebot.v4"
)

// HTMLOptions builds send options with HTML parse mode and optional markup.
func HTMLOptions(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markup}
}

// SendHTML sends an HTML message to the current chat.
func SendHTML(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return c.Send(text, HTMLOptions(markup))
}

// SendText sends text without parse mode, so user input is never interpreted.
func SendText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if markup == nil {
		return c.Send(text)
	}
	return c.Send(text, &tele.SendOptions{ReplyMarkup: markup})
}

// EditHTML edits the message the current callback belongs to. When the update
// carries no editable message it falls back to sending a new one.
func EditHTML(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() == nil || c.Callback().Message == nil {
		return SendHTML(c, text, markup)
	}
	return c.Edit(text, HTMLOptions(markup))
}

// EditText is EditHTML without parse mode.
func EditText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() == nil || c.Callback().Message == nil {
		return SendText(c, text, markup)
	}
	if markup == nil {
		return c.Edit(text)
	}
	return c.Edit(text, &tele.SendOptions{ReplyMarkup: markup})
}
