// Package keyboard builds reply and inline keyboards.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is an inline button whose Data is sent verbatim as callback data.
type InlineBtn struct {
	Text string
	Data string
}

// ReplyButtons builds a resized reply keyboard from rows of labels.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// Column places each label on its own row.
func Column(labels ...string) *tele.ReplyMarkup {
	rows := make([][]string, len(labels))
	for i, l := range labels {
		rows[i] = []string{l}
	}
	return ReplyButtons(rows...)
}

// InlineColumn builds an inline keyboard with one button per row. It returns
// nil for no buttons so callers can pass the result straight to SendOptions.
func InlineColumn(buttons ...InlineBtn) *tele.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}
	inline := make([][]tele.InlineButton, len(buttons))
	for i, b := range buttons {
		inline[i] = []tele.InlineButton{{Text: b.Text, Data: b.Data}}
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}
