// Package commands describes slash commands and their menu aliases.
package commands

import tele "gopkg.in/telebot.v4"

// Access restricts who may run a command.
type Access int

const (
	Everyone Access = iota
	// AdminOnly commands reach the handler only for the configured administrator.
	AdminOnly
)

type Command struct {
	Handler tele.HandlerFunc
	// Description is the text shown in the Telegram command menu.
	Description string
	Access      Access
	// Hidden commands work but stay out of the published menu.
	Hidden bool
	// Aliases are reply keyboard labels that run the same handler.
	Aliases []string
}

// Published reports whether the command belongs in the public menu.
func (c Command) Published() bool {
	return !c.Hidden && c.Access == Everyone && c.Description != ""
}
