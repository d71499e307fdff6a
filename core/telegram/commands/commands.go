// Package commands describes the slash commands a bot registers.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command binds a slash command to its handler and menu metadata.
type Command struct {
	Handler tele.HandlerFunc
	// Description is shown in the Telegram command menu.
	Description string
	// AdminOnly commands pass the operator check and are never listed.
	AdminOnly bool
	Hidden    bool
	// Aliases route extra names such as "/help" to the same handler.
	Aliases []string
}

// Listed reports whether the command belongs in the public menu.
func (c Command) Listed() bool {
	return !c.Hidden && !c.AdminOnly
}
