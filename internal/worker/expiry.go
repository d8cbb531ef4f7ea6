package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	"github.com/chanddari/subbot/internal/domain/model"
	"github.com/chanddari/subbot/internal/metrics"
)

// SubscriptionFacade exposes the subset of application functionality required by the sweeper.
type SubscriptionFacade interface {
	ListActive(ctx context.Context) ([]model.Order, error)
	ApplySweep(ctx context.Context, orderID string, patch model.SweepPatch) error
}

// SweepSettings supplies the operator-tunable sweep behavior.
type SweepSettings interface {
	WarnDays(ctx context.Context) (int, error)
	AutoDeactivate(ctx context.Context) (bool, error)
	Render(ctx context.Context, key string, vars map[string]string) (string, error)
}

// Sweeper recomputes remaining days on active subscriptions, warns users
// near expiry, and deactivates the ones that ran out.
type Sweeper struct {
	facade   SubscriptionFacade
	settings SweepSettings
	gateway  telegram.Client
	metrics  metrics.Collector
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewSweeper constructs the expiry sweeper.
func NewSweeper(facade SubscriptionFacade, settings SweepSettings, gateway telegram.Client, collector metrics.Collector, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		facade:   facade,
		settings: settings,
		gateway:  gateway,
		metrics:  collector,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the periodic sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(runCtx)
}

// Stop waits for the loop to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("expiry sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce sweeps every active subscription. A failure on one order is
// logged and counted without aborting the rest.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	s.metrics.RecordSweepRun()

	warnDays, err := s.settings.WarnDays(ctx)
	if err != nil {
		return fmt.Errorf("load warn threshold: %w", err)
	}
	deactivate, err := s.settings.AutoDeactivate(ctx)
	if err != nil {
		return fmt.Errorf("load deactivation toggle: %w", err)
	}

	orders, err := s.facade.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active subscriptions: %w", err)
	}

	now := s.now()
	for i := range orders {
		if err := s.sweepOrder(ctx, &orders[i], now, warnDays, deactivate); err != nil {
			s.metrics.RecordSweepFailure()
			s.logger.Error("sweep order failed",
				slog.String("order", orders[i].ID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (s *Sweeper) sweepOrder(ctx context.Context, order *model.Order, now time.Time, warnDays int, deactivate bool) error {
	if order.EndDate == nil {
		return nil
	}

	days := daysLeft(*order.EndDate, now)
	var patch model.SweepPatch
	if days != order.DaysLeft {
		patch.DaysLeft = &days
	}

	if days > 0 && days <= warnDays && !order.Warned {
		if err := s.sendWarning(ctx, order, days); err != nil {
			// The warning stays unsent; retry on the next run.
			s.logger.Warn("expiry warning not delivered",
				slog.String("order", order.ID),
				slog.String("error", err.Error()))
		} else {
			warned := true
			patch.Warned = &warned
			s.metrics.RecordExpiryWarning()
		}
	}

	if days <= 0 && deactivate {
		expired := model.OrderStatusExpired
		patch.Status = &expired
	}

	if patch.Empty() {
		return nil
	}
	if err := s.facade.ApplySweep(ctx, order.ID, patch); err != nil {
		return err
	}

	if patch.Status != nil {
		s.metrics.RecordDeactivation()
		if err := s.sendDeactivated(ctx, order); err != nil {
			s.logger.Warn("deactivation notice not delivered",
				slog.String("order", order.ID),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// daysLeft counts calendar days until the end date, rounding partial days up.
func daysLeft(end time.Time, now time.Time) int {
	diff := end.UTC().Sub(now.UTC())
	return int(math.Ceil(diff.Hours() / 24))
}

func (s *Sweeper) sendWarning(ctx context.Context, order *model.Order, days int) error {
	text, err := s.settings.Render(ctx, "expire_warning_template", map[string]string{
		"full_name":      order.Form.FullName,
		"plan_label":     order.PlanLabel,
		"warn_days_left": fmt.Sprintf("%d", days),
	})
	if err != nil {
		return err
	}
	return s.gateway.SendMessage(ctx, order.ChatID, text, nil)
}

func (s *Sweeper) sendDeactivated(ctx context.Context, order *model.Order) error {
	text, err := s.settings.Render(ctx, "auto_deactivated_on_zero", map[string]string{
		"full_name":  order.Form.FullName,
		"plan_label": order.PlanLabel,
	})
	if err != nil {
		return err
	}
	return s.gateway.SendMessage(ctx, order.ChatID, text, nil)
}
