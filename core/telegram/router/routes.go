package router

import (
	tg "github.com/m3rciful/hallbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// Fallbacks supplies handlers for updates that match no command, callback
// or text route. A nil handler leaves the update unanswered.
type Fallbacks interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// Routes assembles every route backed by reg. fb may be nil.
func Routes(reg *tg.Registry, cmds CommandRouteOptions, fb Fallbacks) []tg.Route {
	text := TextOptions{Commands: cmds}
	var cb CallbackOptions
	if fb != nil {
		text.UnknownText = fb.UnknownText()
		text.UnknownDocument = fb.UnknownDocument()
		cb.NotFound = fb.UnknownCallback()
	}
	routes := CommandRoutes(reg, cmds)
	routes = append(routes, TextRoutes(reg, text)...)
	return append(routes, CallbackRoute(reg, cb))
}
