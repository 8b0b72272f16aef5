package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/hallbot/core/logger"
	"github.com/m3rciful/hallbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/hallbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const recentKeep = 10 * time.Second

// recent remembers update ids already logged so a handler wrapped twice
// still produces one receipt line.
var recent = struct {
	sync.Mutex
	seen map[int]time.Time
}{seen: make(map[int]time.Time)}

func alreadyLogged(updateID int) bool {
	now := time.Now()
	recent.Lock()
	defer recent.Unlock()
	for id, ts := range recent.seen {
		if now.Sub(ts) > recentKeep {
			delete(recent.seen, id)
		}
	}
	if _, ok := recent.seen[updateID]; ok {
		return true
	}
	recent.seen[updateID] = now
	return false
}

// LoggerMiddleware attaches rid and update metadata to the update and logs
// one sampled debug receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var chatID, userID int64
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		user := c.Sender()
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && !alreadyLogged(upd.ID) {
			attrs := []slog.Attr{slog.String("status", "ok")}
			if user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			switch {
			case upd.Callback != nil:
				key, payload := callbacks.Parse(upd.Callback)
				attrs = append(attrs,
					slog.String("cb_key", logger.SanitizeLimit(key, 64)),
					slog.String("payload", logger.SanitizeLimit(payload, 64)),
				)
			case upd.Message != nil:
				// Question and answer bodies stay out of logs; only the size is kept.
				attrs = append(attrs, slog.Int("text_len", len([]rune(c.Text()))))
			}
			logger.Debug(ctx, "tg", "update.received", attrs...)
		}

		return next(c)
	}
}
