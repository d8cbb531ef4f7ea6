package repository

import (
	"context"
	"time"

	"github.com/chanddari/subbot/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create inserts a fully populated order. A second trial order for the
	// same chat fails with ErrTrialAlreadyUsed.
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	LatestByChat(ctx context.Context, chatID int64) (*model.Order, error)
	LatestActiveByChat(ctx context.Context, chatID int64) (*model.Order, error)
	ListActive(ctx context.Context) ([]model.Order, error)
	ListByReceiptStatus(ctx context.Context, status model.ReceiptStatus, limit int) ([]model.Order, error)
	CountPaidByChat(ctx context.Context, chatID int64) (int, error)
	TrialUsed(ctx context.Context, chatID int64) (bool, error)
	AttachReceipt(ctx context.Context, id, receiptRef string) error
	// Approve activates a pending order with freshly computed dates.
	Approve(ctx context.Context, id string, start, end time.Time, daysLeft int) error
	// Reject marks the receipt failed; the order stays pending.
	Reject(ctx context.Context, id string) error
	// ApplySweep patches only the sweep-owned fields.
	ApplySweep(ctx context.Context, id string, patch model.SweepPatch) error
}
