package logger

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/hallbot/core/buildinfo"
	coreconfig "github.com/m3rciful/hallbot/core/config"
)

const (
	defaultDebugSample = "1/50"
	writerBuffer       = 64 * 1024
)

// sink owns the configured output chain.
type sink struct {
	once    sync.Once
	mu      sync.Mutex
	closed  bool
	writer  *asyncWriter
	closers []io.Closer
}

var (
	out         sink
	levelVar    slog.LevelVar
	debugSample = newSampler(defaultDebugSample)
	trace       bool

	// root is the process logger; components derive from it.
	root = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &levelVar}))
)

// settings is the logging section of the config with defaults applied.
type settings struct {
	format  logFormat
	level   slog.Level
	order   []string
	sample  string
	profile string
	file    string
}

func resolve(cfg *coreconfig.Config) settings {
	s := settings{
		format:  formatJSON,
		level:   slog.LevelInfo,
		order:   append([]string(nil), defaultKeyOrder...),
		sample:  defaultDebugSample,
		profile: "prod",
	}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}
	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		s.level = slog.LevelDebug
	case "warn", "warning":
		s.level = slog.LevelWarn
	case "error":
		s.level = slog.LevelError
	}
	if order := splitKeys(lc.KeysOrder); len(order) > 0 {
		s.order = order
	}
	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		s.sample = spec
	}
	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		s.file = filepath.Join(dir, name)
	}
	return s
}

func splitKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// InitLogger switches the process to the structured handler described by
// cfg. Only the first call has an effect. Until it runs, tests and CLI
// subcommands log text to stderr.
func InitLogger(cfg *coreconfig.Config) error {
	out.once.Do(func() {
		s := resolve(cfg)
		levelVar.Set(s.level)
		debugSample.Reset(s.sample)
		trace = envFlag("TRACE") || envFlag("LOG_TRACE")

		writers := []io.Writer{os.Stdout}
		if f := openLogFile(s.file); f != nil {
			writers = append(writers, f)
			out.closers = append(out.closers, f)
		}
		out.writer = newAsyncWriter(writers, writerBuffer)

		root = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   out.writer,
			format:   s.format,
			keyOrder: s.order,
		}))
		slog.SetDefault(root)
		logStartup(cfg, s)
	})
	return nil
}

func openLogFile(path string) *os.File {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("logger: create log dir for %s: %v", path, err)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: open log file %s: %v", path, err)
		return nil
	}
	return f
}

func logStartup(cfg *coreconfig.Config, s settings) {
	attrs := []slog.Attr{
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", s.profile),
	}
	if cfg != nil {
		attrs = append(attrs,
			slog.String("storage", cfg.Storage.Driver),
			slog.String("mode", cfg.Telegram.RunMode),
			slog.Bool("admin", cfg.Telegram.AdminID != 0),
		)
	}
	Info(context.Background(), "app", "startup", attrs...)
}

// Shutdown flushes buffered output and closes the log file. Later calls are no-ops.
func Shutdown() error {
	out.mu.Lock()
	defer out.mu.Unlock()
	if out.closed {
		return nil
	}
	out.closed = true

	var errs []error
	if out.writer != nil {
		errs = append(errs, out.writer.Flush(), out.writer.Close())
	}
	for _, c := range out.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Background returns a fresh root context for log calls outside an update.
func Background() context.Context {
	return context.Background()
}

// LogEvent writes one event line; the event name becomes the first attribute.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns the root logger tagged with name.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return root
	}
	return root.With("component", name)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

// ShouldSampleDebug gates high-volume debug lines. TRACE=1 lets all through.
func ShouldSampleDebug() bool {
	return trace || debugSample.Allow()
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
