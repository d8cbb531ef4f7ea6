package model

import "time"

// OrderStatus describes subscription lifecycle.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusActive  OrderStatus = "active"
	OrderStatusExpired OrderStatus = "expired"
)

// ReceiptStatus tracks human review of the payment proof.
type ReceiptStatus string

const (
	ReceiptStatusPending    ReceiptStatus = "Pending"
	ReceiptStatusSuccessful ReceiptStatus = "Successful"
	ReceiptStatusFailed     ReceiptStatus = "Failed"
)

// OrderKind namespaces order identifiers.
type OrderKind string

const (
	OrderKindTrial   OrderKind = "trial"
	OrderKindNew     OrderKind = "new"
	OrderKindRenewal OrderKind = "renewal"
)

// Prefix returns the identifier namespace letter for the kind.
func (k OrderKind) Prefix() string {
	switch k {
	case OrderKindTrial:
		return "T"
	case OrderKindRenewal:
		return "R"
	default:
		return "N"
	}
}

// Form holds registration fields collected during the dialogue.
type Form struct {
	FullName string
	Company  string
	Phone    string
	Province string
	Email    string
}

// Order is a durable registration record.
type Order struct {
	ID             string
	ChatID         int64
	Kind           OrderKind
	Form           Form
	PlanKey        string
	PlanLabel      string
	Amount         int64
	DurationDays   int
	Status         OrderStatus
	ReceiptStatus  ReceiptStatus
	ReceiptRef     string
	StartDate      *time.Time
	EndDate        *time.Time
	DaysLeft       int
	Warned         bool
	PaidOrderCount int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SweepPatch carries only the fields the expiry sweep owns. Nil pointers
// leave the stored value untouched so concurrent edits to other fields
// are never clobbered.
type SweepPatch struct {
	DaysLeft *int
	Warned   *bool
	Status   *OrderStatus
}

// Empty reports whether the patch would change nothing.
func (p SweepPatch) Empty() bool {
	return p.DaysLeft == nil && p.Warned == nil && p.Status == nil
}
