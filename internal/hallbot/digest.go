package hallbot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/hallbot/core/logger"
	"github.com/m3rciful/hallbot/internal/relay"
)

// cronParser accepts standard 5-field expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

const digestTimeout = 30 * time.Second

// Digest periodically reminds the administrator of unanswered questions.
type Digest struct {
	svc  *relay.Service
	out  relay.Messenger
	cron *cron.Cron
}

// NewDigest validates expr and prepares the schedule; Start runs it.
func NewDigest(expr string, svc *relay.Service, out relay.Messenger) (*Digest, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("hallbot: invalid digest schedule %q: %w", expr, err)
	}
	d := &Digest{
		svc:  svc,
		out:  out,
		cron: cron.New(cron.WithParser(cronParser), cron.WithLocation(time.Local)),
	}
	d.cron.Schedule(sched, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(logger.Background(), digestTimeout)
		defer cancel()
		d.Run(ctx)
	}))
	return d, nil
}

// Start begins firing on schedule.
func (d *Digest) Start() { d.cron.Start() }

// Stop waits for a running reminder to finish.
func (d *Digest) Stop(ctx context.Context) {
	select {
	case <-d.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Run sends one reminder when anything is pending.
func (d *Digest) Run(ctx context.Context) {
	adminID := d.svc.AdminID()
	if adminID == 0 {
		return
	}
	pending, err := d.svc.Pending(ctx)
	if err != nil {
		logger.Error(ctx, "digest", "digest.run",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return
	}
	if len(pending) == 0 {
		logger.Debug(ctx, "digest", "digest.run", slog.String("status", "skip"))
		return
	}
	if _, err := d.out.Send(ctx, adminID, d.svc.Formatter().Digest(len(pending))); err != nil {
		logger.Warn(ctx, "digest", "digest.run",
			slog.String("status", "fail"),
			slog.Int("pending", len(pending)),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Info(ctx, "digest", "digest.run",
		slog.String("status", "ok"),
		slog.Int("pending", len(pending)),
	)
}
