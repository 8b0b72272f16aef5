package middleware

import (
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func newContext(t *testing.T, senderID int64) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	return bot.NewContext(tele.Update{
		ID: 1,
		Message: &tele.Message{
			Sender: &tele.User{ID: senderID},
			Chat:   &tele.Chat{ID: senderID},
			Text:   "hi",
		},
	})
}

func TestAdminOnlyMiddleware(t *testing.T) {
	var ran, rejected int
	next := func(tele.Context) error { ran++; return nil }
	reject := func(tele.Context) error { rejected++; return nil }

	h := AdminOnlyMiddleware(AdminOptions{AdminID: 7, OnReject: reject})(next)
	if err := h(newContext(t, 7)); err != nil {
		t.Fatalf("admin: %v", err)
	}
	if err := h(newContext(t, 8)); err != nil {
		t.Fatalf("user: %v", err)
	}
	if ran != 1 || rejected != 1 {
		t.Fatalf("ran=%d rejected=%d", ran, rejected)
	}
}

func TestAdminOnlyWithoutAdminRejectsEveryone(t *testing.T) {
	ran := false
	h := AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error { ran = true; return nil })
	_ = h(newContext(t, 0))
	_ = h(newContext(t, 7))
	if ran {
		t.Fatal("no configured admin must mean nobody is admin")
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(newContext(t, 1)); err != nil {
		t.Fatalf("recovered panic returned %v", err)
	}

	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	if err := h(newContext(t, 1)); !errors.Is(err, want) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	c := newContext(t, 5)
	var rid string
	h := LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		return nil
	})
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if rid != "1:5:5" {
		t.Fatalf("rid = %q", rid)
	}
}

func TestMessageCounters(t *testing.T) {
	c := newContext(t, 5)
	h := MessageMetricsMiddleware(func(c tele.Context) error { return nil })
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if n, kb := GetCounters(c); n != 0 || kb {
		t.Fatalf("counters = %d %v", n, kb)
	}
	if !hasKeyboard([]interface{}{&tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}}}) {
		t.Fatal("keyboard not detected")
	}
}
