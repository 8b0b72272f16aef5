package hallbot

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/m3rciful/hallbot/core/telegram/keyboard"
	"github.com/m3rciful/hallbot/internal/notice"
	"github.com/m3rciful/hallbot/internal/relay"

	tele "gopkg.in/telebot.v4"
)

var errNotAttached = errors.New("hallbot: messenger is not attached to a bot")

// Messenger sends relay notices through a telebot Bot. Calls are synchronous:
// the relay needs the outcome of every send.
type Messenger struct {
	bot atomic.Pointer[tele.Bot]
}

// Attach binds the bot once the runtime has built it.
func (m *Messenger) Attach(b *tele.Bot) {
	m.bot.Store(b)
}

func (m *Messenger) Send(_ context.Context, chatID int64, n notice.Notice) (relay.Message, error) {
	b := m.bot.Load()
	if b == nil {
		return relay.Message{}, errNotAttached
	}
	msg, err := b.Send(tele.ChatID(chatID), n.Text, sendOptions(n))
	if err != nil {
		return relay.Message{}, err
	}
	return relay.Message{ChatID: chatID, ID: msg.ID}, nil
}

func (m *Messenger) Edit(_ context.Context, msg relay.Message, n notice.Notice) error {
	b := m.bot.Load()
	if b == nil {
		return errNotAttached
	}
	stored := tele.StoredMessage{MessageID: strconv.Itoa(msg.ID), ChatID: msg.ChatID}
	_, err := b.Edit(stored, n.Text, sendOptions(n))
	return err
}

// sendOptions maps a notice onto telebot options. Editing with no actions
// drops the inline keyboard of the original message.
func sendOptions(n notice.Notice) *tele.SendOptions {
	opts := &tele.SendOptions{ReplyMarkup: markup(n.Actions)}
	if n.Markdown {
		opts.ParseMode = tele.ModeMarkdown
	}
	return opts
}

func markup(actions []notice.Action) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, len(actions))
	for i, a := range actions {
		buttons[i] = keyboard.InlineBtn{Text: a.Label, Data: a.Token}
	}
	return keyboard.InlineColumn(buttons...)
}
