package helpers

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Handle returns "@username" or "" when the user has none.
func Handle(u *tele.User) string {
	if u == nil || strings.TrimSpace(u.Username) == "" {
		return ""
	}
	return "@" + strings.TrimSpace(u.Username)
}

// FullName joins first and last name the way Telegram clients show them.
func FullName(u *tele.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// SenderID returns the id of the update author or 0.
func SenderID(c tele.Context) int64 {
	if s := c.Sender(); s != nil {
		return s.ID
	}
	return 0
}
