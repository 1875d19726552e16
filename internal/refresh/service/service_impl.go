package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/clock"
	"github.com/railzwaylabs/pricecalc/internal/config"
	"github.com/railzwaylabs/pricecalc/internal/observability"
	"github.com/railzwaylabs/pricecalc/internal/refresh/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lc       fx.Lifecycle
	Log      *zap.Logger
	Clock    clock.Clock
	Cfg      config.Config
	Gate     domain.Gate
	Notifier domain.Notifier
	Catalog  catalogdomain.Service
	Metrics  *observability.Metrics
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	gate     domain.Gate
	notifier domain.Notifier
	catalog  catalogdomain.Service
	metrics  *observability.Metrics

	webhookURL   string
	cooldown     time.Duration
	refetchDelay time.Duration
	timeout      time.Duration

	// background owns the delayed re-fetches; cancelled on stop.
	background context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func New(p Params) domain.Service {
	background, cancel := context.WithCancel(context.Background())
	timeout := p.Cfg.Refresh.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &Service{
		log:          p.Log.Named("refresh.service"),
		clock:        p.Clock,
		gate:         p.Gate,
		notifier:     p.Notifier,
		catalog:      p.Catalog,
		metrics:      p.Metrics,
		webhookURL:   p.Cfg.Refresh.WebhookURL,
		cooldown:     p.Cfg.Refresh.Cooldown,
		refetchDelay: p.Cfg.Refresh.RefetchDelay,
		timeout:      timeout,
		background:   background,
		cancel:       cancel,
	}
	p.Lc.Append(fx.Hook{
		OnStop: s.stop,
	})
	return s
}

// Trigger arms the cooldown and calls the webhook. The window stays armed
// when the webhook fails; the user retries after it expires.
func (s *Service) Trigger(ctx context.Context, actor uuid.UUID) (*domain.TriggerResult, error) {
	if s.webhookURL == "" {
		s.record("not_configured")
		return nil, domain.ErrWebhookNotConfigured
	}

	remaining, armed, err := s.gate.Arm(ctx, s.cooldown)
	if err != nil {
		s.record("gate_error")
		return nil, apperror.Wrap(apperror.ErrStore, err)
	}
	if !armed {
		s.record("cooldown")
		return nil, domain.CooldownError(remaining)
	}

	now := s.clock.Now(ctx)
	if err := s.notifier.Notify(ctx); err != nil {
		s.record("webhook_failed")
		s.log.Error("pricing refresh webhook failed",
			zap.String("actor", actor.String()),
			zap.Error(err),
		)
		if apperror.IsKind(err, apperror.KindConfiguration) {
			return nil, err
		}
		return nil, apperror.Wrap(domain.ErrWebhookFailed, err)
	}

	s.record("triggered")
	s.log.Info("pricing refresh triggered",
		zap.String("actor", actor.String()),
		zap.Duration("refetch_in", s.refetchDelay),
	)
	s.scheduleRefetch()

	return &domain.TriggerResult{
		TriggeredAt:   now,
		CooldownUntil: now.Add(remaining),
		RefetchAt:     now.Add(s.refetchDelay),
	}, nil
}

func (s *Service) Status(ctx context.Context) (*domain.Status, error) {
	remaining, err := s.gate.Remaining(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrStore, err)
	}
	if remaining <= 0 {
		return &domain.Status{}, nil
	}
	until := s.clock.Now(ctx).Add(remaining)
	return &domain.Status{
		Cooling:       true,
		RetryAfter:    int64(math.Ceil(remaining.Seconds())),
		CooldownUntil: &until,
	}, nil
}

// scheduleRefetch reloads the catalog once the pipeline has had time to
// write new prices.
func (s *Service) scheduleRefetch() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(s.refetchDelay)
		defer timer.Stop()
		select {
		case <-s.background.Done():
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(s.background, s.timeout)
		defer cancel()
		if err := s.catalog.Reload(ctx); err != nil {
			s.log.Warn("catalog re-fetch after refresh failed", zap.Error(err))
			return
		}
		s.log.Info("catalog re-fetched after refresh")
	}()
}

func (s *Service) stop(ctx context.Context) error {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) record(outcome string) {
	s.metrics.RefreshTriggers.WithLabelValues(outcome).Inc()
}
