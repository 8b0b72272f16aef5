// Package hallbot wires the support relay to Telegram: commands, menu
// buttons, inline question actions, the liveness endpoint and the digest.
package hallbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/hallbot/core/bootstrap"
	corecmd "github.com/m3rciful/hallbot/core/cmd"
	coreconfig "github.com/m3rciful/hallbot/core/config"
	"github.com/m3rciful/hallbot/core/health"
	"github.com/m3rciful/hallbot/core/logger"
	tg "github.com/m3rciful/hallbot/core/telegram"
	"github.com/m3rciful/hallbot/core/telegram/router"
	"github.com/m3rciful/hallbot/internal/notice"
	"github.com/m3rciful/hallbot/internal/questions"
	"github.com/m3rciful/hallbot/internal/relay"
)

// App is the running bot.
type App struct {
	cfg       *coreconfig.Config
	store     questions.Store
	relay     *relay.Service
	messenger *Messenger
	registry  *tg.Registry
	digest    *Digest
	health    *health.Server
}

var (
	_ corecmd.TelegramApp = (*App)(nil)
	_ router.Fallbacks    = (*App)(nil)
)

// OpenStore returns the question store selected by storage.driver. db must
// be non-nil for the postgres driver.
func OpenStore(ctx context.Context, cfg *coreconfig.Config, db *sqlx.DB) (questions.Store, error) {
	switch cfg.Storage.Driver {
	case coreconfig.StoragePostgres:
		if db == nil {
			return nil, fmt.Errorf("hallbot: postgres storage without a database connection")
		}
		return questions.NewSQLStore(db), nil
	default:
		return questions.OpenFile(ctx, cfg.Storage.Path)
	}
}

// Bootstrap initializes infrastructure and builds the App. It is the serve
// entry point handed to core/cmd.
func Bootstrap(ctx context.Context, cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(ctx, cfg, res.DB)
	if err != nil {
		if res.DB != nil {
			_ = res.DB.Close()
		}
		return nil, err
	}
	return New(cfg, store)
}

// New builds the App around an open store. The App owns store.
func New(cfg *coreconfig.Config, store questions.Store) (*App, error) {
	if cfg.Telegram.AdminID == 0 {
		logger.Warn(context.Background(), "app", "admin",
			slog.String("status", "skip"),
			slog.String("cause", "admin_not_configured"),
		)
	}

	messenger := &Messenger{}
	formatter := notice.New(cfg.Support.VenueName, cfg.Support.PreviewRunes)
	a := &App{
		cfg:       cfg,
		store:     store,
		relay:     relay.New(store, messenger, cfg.Telegram.AdminID, formatter),
		messenger: messenger,
		registry:  tg.NewRegistry(),
	}
	if err := a.registerHandlers(a.registry); err != nil {
		return nil, err
	}
	if cfg.Support.DigestCron != "" {
		d, err := NewDigest(cfg.Support.DigestCron, a.relay, messenger)
		if err != nil {
			return nil, err
		}
		a.digest = d
	}
	return a, nil
}

// Relay exposes the relay service.
func (a *App) Relay() *relay.Service { return a.relay }

// TelegramRunOptions assembles routes, middlewares and lifecycle hooks.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(),
		Routes:      a.Routes(),
		OnStart:     a.onRuntimeStart,
		OnStop:      a.onRuntimeStop,
	}, nil
}

// Routes returns every telebot route of the bot.
func (a *App) Routes() []tg.Route {
	return router.Routes(a.registry, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: a.onAdminOnly,
	}, a)
}

func (a *App) onRuntimeStart(ctx context.Context, rt tg.Runtime) error {
	a.messenger.Attach(rt.Bot)

	if a.cfg.Health.Listen != "" {
		srv, err := health.Start(ctx, health.Options{
			Listen: a.cfg.Health.Listen,
			Banner: healthBanner,
			Pending: func(ctx context.Context) (int, error) {
				st, err := a.relay.Stats(ctx)
				return st.Pending, err
			},
		})
		if err != nil {
			return err
		}
		a.health = srv
	}
	if a.digest != nil {
		a.digest.Start()
		logger.Info(ctx, "digest", "digest.start",
			slog.String("status", "ok"),
			slog.String("mode", a.cfg.Support.DigestCron),
		)
	}
	return nil
}

func (a *App) onRuntimeStop(ctx context.Context, _ tg.Runtime) error {
	if a.digest != nil {
		a.digest.Stop(ctx)
	}
	if a.health != nil {
		return a.health.Stop(ctx)
	}
	return nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}
