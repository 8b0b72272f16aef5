// Package callbacks decodes inline button data.
//
// Two encodings arrive at the bot: telebot's own "\f<unique>|<payload>" and
// the plain "<key>_<payload>" tokens written by the support relay
// (for example "ans_42").
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseData splits raw callback data into a routing key and its payload.
func ParseData(data string) (string, string) {
	if rest, ok := strings.CutPrefix(data, "\f"); ok {
		key, payload, _ := strings.Cut(rest, "|")
		return strings.TrimSpace(key), payload
	}
	key, payload, _ := strings.Cut(strings.TrimSpace(data), "_")
	return key, payload
}

// Parse returns key and payload of cb. A callback already matched by
// telebot carries the key in Unique and only the payload in Data.
func Parse(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	return ParseData(cb.Data)
}
