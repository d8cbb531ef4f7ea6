package test

import (
	"context"
	"sync/atomic"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	"github.com/chanddari/subbot/internal/domain/model"
)

// UpdateFacadeStub lets handler tests observe webhook dispatch.
type UpdateFacadeStub struct {
	ProcessFn func(context.Context, telegram.Update) error
	Processed int32
}

// ProcessUpdate counts invocations and delegates to the override.
func (s *UpdateFacadeStub) ProcessUpdate(ctx context.Context, upd telegram.Update) error {
	atomic.AddInt32(&s.Processed, 1)
	if s.ProcessFn != nil {
		return s.ProcessFn(ctx, upd)
	}
	return nil
}

// ProcessedCount reports how many updates were dispatched.
func (s *UpdateFacadeStub) ProcessedCount() int32 {
	return atomic.LoadInt32(&s.Processed)
}

// SweepFacadeStub simulates the cron sweep trigger.
type SweepFacadeStub struct {
	RunFn func(context.Context) error
	Runs  int32
}

// RunSweep counts invocations and delegates to the override.
func (s *SweepFacadeStub) RunSweep(ctx context.Context) error {
	atomic.AddInt32(&s.Runs, 1)
	if s.RunFn != nil {
		return s.RunFn(ctx)
	}
	return nil
}

// HealthFacadeStub simulates the storage probe.
type HealthFacadeStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s *HealthFacadeStub) HealthCheck(ctx context.Context) error {
	return s.Err
}

// SweepSourceStub feeds the sweeper a fixed order set.
type SweepSourceStub struct {
	Orders  []model.Order
	ListErr error
	Patches []SweepPatchCall
	ApplyFn func(context.Context, string, model.SweepPatch) error
}

// SweepPatchCall records one ApplySweep invocation.
type SweepPatchCall struct {
	OrderID string
	Patch   model.SweepPatch
}

// ListActive returns the configured orders.
func (s *SweepSourceStub) ListActive(ctx context.Context) ([]model.Order, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return s.Orders, nil
}

// ApplySweep records the patch and delegates to the override.
func (s *SweepSourceStub) ApplySweep(ctx context.Context, orderID string, patch model.SweepPatch) error {
	s.Patches = append(s.Patches, SweepPatchCall{OrderID: orderID, Patch: patch})
	if s.ApplyFn != nil {
		return s.ApplyFn(ctx, orderID, patch)
	}
	return nil
}
