package usecase

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/chanddari/subbot/internal/domain/errors"
	"github.com/chanddari/subbot/internal/domain/model"
	"github.com/chanddari/subbot/internal/domain/repository"
)

// sequenceKey is the shared counter all order kinds draw from.
const sequenceKey = "order"

// digestLimit caps admin list digests.
const digestLimit = 50

// OrderUseCase encapsulates the order/subscription lifecycle.
type OrderUseCase struct {
	orders repository.OrderRepository
	seq    repository.SequenceRepository
	now    func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, seq repository.SequenceRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders, seq: seq, now: time.Now}
}

func (u *OrderUseCase) mintID(ctx context.Context, kind model.OrderKind, counterStart int64) (string, error) {
	value, err := u.seq.Next(ctx, sequenceKey, counterStart)
	if err != nil {
		return "", fmt.Errorf("next order sequence: %w", err)
	}
	return fmt.Sprintf("%s-%d", kind.Prefix(), value), nil
}

func dateUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateTrial creates an auto-approved trial order. The repository's
// uniqueness constraint turns concurrent double-submission into
// ErrTrialAlreadyUsed.
func (u *OrderUseCase) CreateTrial(ctx context.Context, chatID int64, form model.Form, plan *model.Plan, counterStart int64) (*model.Order, error) {
	if plan.DurationDays <= 0 {
		return nil, domainErrors.ErrInvalidDuration
	}

	id, err := u.mintID(ctx, model.OrderKindTrial, counterStart)
	if err != nil {
		return nil, err
	}

	start := dateUTC(u.now())
	end := start.AddDate(0, 0, plan.DurationDays)
	order := &model.Order{
		ID:            id,
		ChatID:        chatID,
		Kind:          model.OrderKindTrial,
		Form:          form,
		PlanKey:       plan.ID,
		PlanLabel:     plan.Label,
		Amount:        plan.Price,
		DurationDays:  plan.DurationDays,
		Status:        model.OrderStatusActive,
		ReceiptStatus: model.ReceiptStatusSuccessful,
		StartDate:     &start,
		EndDate:       &end,
		DaysLeft:      plan.DurationDays,
	}

	if err := u.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CreatePaid creates a pending order awaiting a receipt. The plan duration
// is persisted so approval never needs a fallback.
func (u *OrderUseCase) CreatePaid(ctx context.Context, chatID int64, form model.Form, plan *model.Plan, counterStart int64) (*model.Order, error) {
	if plan.Tier == model.PlanTierTrial {
		return nil, domainErrors.ErrPlanNotFound
	}
	if plan.DurationDays <= 0 {
		return nil, domainErrors.ErrInvalidDuration
	}

	kind := plan.Kind()
	id, err := u.mintID(ctx, kind, counterStart)
	if err != nil {
		return nil, err
	}

	paidCount, err := u.orders.CountPaidByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("count paid orders: %w", err)
	}

	order := &model.Order{
		ID:             id,
		ChatID:         chatID,
		Kind:           kind,
		Form:           form,
		PlanKey:        plan.ID,
		PlanLabel:      plan.Label,
		Amount:         plan.Price,
		DurationDays:   plan.DurationDays,
		Status:         model.OrderStatusPending,
		ReceiptStatus:  model.ReceiptStatusPending,
		PaidOrderCount: paidCount,
	}

	if err := u.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// AttachReceipt records the submitted proof-of-payment reference.
func (u *OrderUseCase) AttachReceipt(ctx context.Context, orderID, receiptRef string) error {
	return u.orders.AttachReceipt(ctx, orderID, receiptRef)
}

// Approve activates a pending order. Dates are recomputed from the duration
// persisted at creation time.
func (u *OrderUseCase) Approve(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DurationDays <= 0 {
		return nil, domainErrors.ErrInvalidDuration
	}

	start := dateUTC(u.now())
	end := start.AddDate(0, 0, order.DurationDays)
	if err := u.orders.Approve(ctx, orderID, start, end, order.DurationDays); err != nil {
		return nil, err
	}

	order.Status = model.OrderStatusActive
	order.ReceiptStatus = model.ReceiptStatusSuccessful
	order.StartDate = &start
	order.EndDate = &end
	order.DaysLeft = order.DurationDays
	return order, nil
}

// Reject fails the receipt; the order stays pending for a manual retry.
func (u *OrderUseCase) Reject(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := u.orders.Reject(ctx, orderID); err != nil {
		return nil, err
	}
	order.ReceiptStatus = model.ReceiptStatusFailed
	order.Status = model.OrderStatusPending
	return order, nil
}

// GetByID fetches one order.
func (u *OrderUseCase) GetByID(ctx context.Context, orderID string) (*model.Order, error) {
	return u.orders.GetByID(ctx, orderID)
}

// TrialUsed reports whether the chat ever had a trial order.
func (u *OrderUseCase) TrialUsed(ctx context.Context, chatID int64) (bool, error) {
	return u.orders.TrialUsed(ctx, chatID)
}

// LatestByChat returns the chat's most recent order.
func (u *OrderUseCase) LatestByChat(ctx context.Context, chatID int64) (*model.Order, error) {
	return u.orders.LatestByChat(ctx, chatID)
}

// LatestActiveByChat returns the chat's most recent active subscription.
func (u *OrderUseCase) LatestActiveByChat(ctx context.Context, chatID int64) (*model.Order, error) {
	return u.orders.LatestActiveByChat(ctx, chatID)
}

// ListByReceiptStatus returns recent orders for admin digests.
func (u *OrderUseCase) ListByReceiptStatus(ctx context.Context, status model.ReceiptStatus) ([]model.Order, error) {
	return u.orders.ListByReceiptStatus(ctx, status, digestLimit)
}

// ListActive returns every active order for the expiry sweep.
func (u *OrderUseCase) ListActive(ctx context.Context) ([]model.Order, error) {
	return u.orders.ListActive(ctx)
}

// ApplySweep patches sweep-owned fields on one order.
func (u *OrderUseCase) ApplySweep(ctx context.Context, orderID string, patch model.SweepPatch) error {
	return u.orders.ApplySweep(ctx, orderID, patch)
}
