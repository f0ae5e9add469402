// Package maintenance hosts background jobs that keep the connection pool tidy.
package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/quantfold/studio/internal/services"
	"github.com/quantfold/studio/pkg/logger"
)

const (
	defaultIdleTTL  = 30 * time.Minute
	defaultSchedule = "@every 5m"
)

// Pruner periodically deactivates connections whose executors have sat idle
// past the configured TTL. Deactivated connections stay registered and can be
// refreshed by a subsequent upsert.
type Pruner struct {
	conns    *services.ConnectionService
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	ttl      time.Duration
	schedule string
}

// Option customises the Pruner.
type Option func(*Pruner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(p *Pruner) {
		if c != nil {
			p.cron = c
		}
	}
}

// WithNow overrides the clock used for idle comparisons.
func WithNow(now func() time.Time) Option {
	return func(p *Pruner) {
		if now != nil {
			p.now = now
		}
	}
}

// WithTTL adjusts how long an executor may sit idle before being closed.
func WithTTL(ttl time.Duration) Option {
	return func(p *Pruner) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithSchedule overrides the cron specification for the prune job.
func WithSchedule(spec string) Option {
	return func(p *Pruner) {
		if spec != "" {
			p.schedule = spec
		}
	}
}

// NewPruner constructs a Pruner with sensible defaults.
func NewPruner(conns *services.ConnectionService, opts ...Option) *Pruner {
	pruner := &Pruner{
		conns:    conns,
		now:      time.Now,
		ttl:      defaultIdleTTL,
		schedule: defaultSchedule,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(pruner)
	}

	if pruner.cron == nil {
		pruner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return pruner
}

// Start registers the prune job with the cron scheduler and launches it.
func (p *Pruner) Start() error {
	if p.conns == nil {
		return nil
	}

	if _, err := p.cron.AddFunc(p.schedule, func() {
		if err := p.RunOnce(context.Background()); err != nil {
			p.log.Warn("idle connection prune failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	p.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running job to complete.
func (p *Pruner) Stop() context.Context {
	if p.cron == nil {
		return context.Background()
	}
	return p.cron.Stop()
}

// RunOnce executes a single prune pass. Primarily used in tests and during
// graceful shutdown.
func (p *Pruner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if p.conns == nil {
		return nil
	}

	cutoff := p.now().Add(-p.ttl)
	pruned, err := p.conns.PruneIdle(ctx, cutoff)
	if len(pruned) > 0 {
		p.log.Info("pruned idle connections", zap.Strings("connections", pruned))
	}
	return err
}
