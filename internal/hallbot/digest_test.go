package hallbot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	coreconfig "github.com/m3rciful/hallbot/core/config"
	"github.com/m3rciful/hallbot/internal/notice"
	"github.com/m3rciful/hallbot/internal/questions"
	"github.com/m3rciful/hallbot/internal/relay"
)

type sentNotice struct {
	chatID int64
	n      notice.Notice
}

type recordingMessenger struct {
	mu   sync.Mutex
	sent []sentNotice
	err  error
}

func (m *recordingMessenger) Send(_ context.Context, chatID int64, n notice.Notice) (relay.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return relay.Message{}, m.err
	}
	m.sent = append(m.sent, sentNotice{chatID: chatID, n: n})
	return relay.Message{ChatID: chatID, ID: len(m.sent)}, nil
}

func (m *recordingMessenger) Edit(context.Context, relay.Message, notice.Notice) error { return nil }

func newDigestFixture(t *testing.T, adminID int64) (*Digest, *questions.FileStore, *recordingMessenger) {
	t.Helper()
	store, err := questions.OpenFile(context.Background(), filepath.Join(t.TempDir(), "q.json"))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	out := &recordingMessenger{}
	svc := relay.New(store, out, adminID, notice.New("Hall", 0))
	d, err := NewDigest("0 10 * * *", svc, out)
	if err != nil {
		t.Fatalf("NewDigest: %v", err)
	}
	return d, store, out
}

func TestDigestRun(t *testing.T) {
	ctx := context.Background()
	d, store, out := newDigestFixture(t, 7)

	d.Run(ctx)
	if len(out.sent) != 0 {
		t.Fatalf("digest sent with nothing pending: %+v", out.sent)
	}

	store.Put(ctx, 1, "a", "", "")
	store.Put(ctx, 2, "b", "", "")
	d.Run(ctx)
	if len(out.sent) != 1 || out.sent[0].chatID != 7 {
		t.Fatalf("digest = %+v", out.sent)
	}
	if !strings.Contains(out.sent[0].n.Text, "Ожидают ответа: 2") {
		t.Fatalf("digest text = %q", out.sent[0].n.Text)
	}

	out.err = errors.New("boom")
	d.Run(ctx)
}

func TestDigestWithoutAdmin(t *testing.T) {
	ctx := context.Background()
	d, store, out := newDigestFixture(t, 0)
	store.Put(ctx, 1, "a", "", "")
	d.Run(ctx)
	if len(out.sent) != 0 {
		t.Fatalf("digest sent without an administrator: %+v", out.sent)
	}
}

func TestDigestLifecycle(t *testing.T) {
	d, _, _ := newDigestFixture(t, 7)
	d.Start()
	d.Stop(context.Background())
}

func TestNewDigestRejectsBadSchedule(t *testing.T) {
	if _, err := NewDigest("every tuesday", nil, nil); err == nil {
		t.Fatal("expected an error for a malformed schedule")
	}
	if _, err := NewDigest("@daily", nil, nil); err != nil {
		t.Fatalf("descriptor rejected: %v", err)
	}
}

func TestNewRejectsBadDigest(t *testing.T) {
	store, _ := questions.OpenFile(context.Background(), filepath.Join(t.TempDir(), "q.json"))
	cfg := &coreconfig.Config{Support: coreconfig.SupportConfig{DigestCron: "61 * * * *"}}
	if _, err := New(cfg, store); err == nil {
		t.Fatal("expected New to fail on an invalid digest schedule")
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	cfg := &coreconfig.Config{Storage: coreconfig.StorageConfig{
		Driver: coreconfig.StorageFile,
		Path:   filepath.Join(t.TempDir(), "q.json"),
	}}
	store, err := OpenStore(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("OpenStore(file): %v", err)
	}
	if _, ok := store.(*questions.FileStore); !ok {
		t.Fatalf("store = %T", store)
	}

	cfg.Storage.Driver = coreconfig.StoragePostgres
	if _, err := OpenStore(ctx, cfg, nil); err == nil {
		t.Fatal("postgres without a connection must fail")
	}
}

func TestMainMenu(t *testing.T) {
	user := mainMenu(false)
	if len(user.ReplyKeyboard) != 3 || user.ReplyKeyboard[2][0].Text != LabelSupport {
		t.Fatalf("user menu = %+v", user.ReplyKeyboard)
	}
	admin := mainMenu(true)
	if admin.ReplyKeyboard[2][0].Text != LabelStats {
		t.Fatalf("admin menu = %+v", admin.ReplyKeyboard)
	}
	if !user.ResizeKeyboard {
		t.Fatal("menu should be resized")
	}
}

func TestSendOptions(t *testing.T) {
	opts := sendOptions(notice.Notice{Text: "x", Markdown: true, Actions: []notice.Action{{Label: "ok", Token: "ans_1"}}})
	if opts.ParseMode != "Markdown" {
		t.Fatalf("parse mode = %q", opts.ParseMode)
	}
	if opts.ReplyMarkup == nil || opts.ReplyMarkup.InlineKeyboard[0][0].Data != "ans_1" {
		t.Fatalf("markup = %+v", opts.ReplyMarkup)
	}
	if plain := sendOptions(notice.Notice{Text: "x"}); plain.ReplyMarkup != nil || plain.ParseMode != "" {
		t.Fatalf("plain options = %+v", plain)
	}
}

func TestMessengerNotAttached(t *testing.T) {
	m := &Messenger{}
	if _, err := m.Send(context.Background(), 1, notice.Notice{Text: "x"}); !errors.Is(err, errNotAttached) {
		t.Fatalf("Send err = %v", err)
	}
	if err := m.Edit(context.Background(), relay.Message{ChatID: 1, ID: 1}, notice.Notice{Text: "x"}); !errors.Is(err, errNotAttached) {
		t.Fatalf("Edit err = %v", err)
	}
}
