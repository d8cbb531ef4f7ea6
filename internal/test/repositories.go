package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/chanddari/subbot/internal/domain/errors"
	"github.com/chanddari/subbot/internal/domain/model"
)

// OrderRepositoryStub stores orders in-memory for tests. Orders keep their
// insertion sequence so "latest" lookups behave like the real ORDER BY.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	Orders []model.Order
	Err    error

	CreateFn func(context.Context, *model.Order) error
}

// Create inserts an order, enforcing the one-trial-per-chat rule.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	if s.Err != nil {
		return s.Err
	}
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.Orders {
		if o.ID == order.ID {
			return domainErrors.ErrAlreadyExists
		}
		if order.Kind == model.OrderKindTrial && o.Kind == model.OrderKindTrial && o.ChatID == order.ChatID {
			return domainErrors.ErrTrialAlreadyUsed
		}
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	s.Orders = append(s.Orders, *order)
	return nil
}

// GetByID fetches one order or returns not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			order := s.Orders[i]
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// LatestByChat returns the most recently inserted order of the chat.
func (s *OrderRepositoryStub) LatestByChat(ctx context.Context, chatID int64) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.Orders) - 1; i >= 0; i-- {
		if s.Orders[i].ChatID == chatID {
			order := s.Orders[i]
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// LatestActiveByChat returns the chat's most recent active order.
func (s *OrderRepositoryStub) LatestActiveByChat(ctx context.Context, chatID int64) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.Orders) - 1; i >= 0; i-- {
		if s.Orders[i].ChatID == chatID && s.Orders[i].Status == model.OrderStatusActive {
			order := s.Orders[i]
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// ListActive returns every active order.
func (s *OrderRepositoryStub) ListActive(ctx context.Context) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.Orders {
		if o.Status == model.OrderStatusActive {
			out = append(out, o)
		}
	}
	return out, nil
}

// ListByReceiptStatus returns newest-first orders with a receipt state.
func (s *OrderRepositoryStub) ListByReceiptStatus(ctx context.Context, status model.ReceiptStatus, limit int) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.Orders {
		if o.ReceiptStatus == status {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountPaidByChat counts non-trial orders of the chat.
func (s *OrderRepositoryStub) CountPaidByChat(ctx context.Context, chatID int64) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, o := range s.Orders {
		if o.ChatID == chatID && o.Kind != model.OrderKindTrial {
			count++
		}
	}
	return count, nil
}

// TrialUsed reports whether the chat ever created a trial order.
func (s *OrderRepositoryStub) TrialUsed(ctx context.Context, chatID int64) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.Orders {
		if o.ChatID == chatID && o.Kind == model.OrderKindTrial {
			return true, nil
		}
	}
	return false, nil
}

// AttachReceipt stores the receipt reference on a pending order.
func (s *OrderRepositoryStub) AttachReceipt(ctx context.Context, id, receiptRef string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			s.Orders[i].ReceiptRef = receiptRef
			s.Orders[i].ReceiptStatus = model.ReceiptStatusPending
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// Approve activates an order with the given dates.
func (s *OrderRepositoryStub) Approve(ctx context.Context, id string, start, end time.Time, daysLeft int) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			s.Orders[i].Status = model.OrderStatusActive
			s.Orders[i].ReceiptStatus = model.ReceiptStatusSuccessful
			s.Orders[i].StartDate = &start
			s.Orders[i].EndDate = &end
			s.Orders[i].DaysLeft = daysLeft
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// Reject fails the receipt and keeps the order pending.
func (s *OrderRepositoryStub) Reject(ctx context.Context, id string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			s.Orders[i].ReceiptStatus = model.ReceiptStatusFailed
			s.Orders[i].Status = model.OrderStatusPending
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// ApplySweep patches the sweep-owned fields.
func (s *OrderRepositoryStub) ApplySweep(ctx context.Context, id string, patch model.SweepPatch) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Orders {
		if s.Orders[i].ID != id {
			continue
		}
		if patch.DaysLeft != nil {
			s.Orders[i].DaysLeft = *patch.DaysLeft
		}
		if patch.Warned != nil {
			s.Orders[i].Warned = *patch.Warned
		}
		if patch.Status != nil {
			s.Orders[i].Status = *patch.Status
		}
		return nil
	}
	return domainErrors.ErrNotFound
}

// PlanRepositoryStub serves a fixed catalog.
type PlanRepositoryStub struct {
	Plans []model.Plan
	Err   error
}

// ListActive filters active plans of the pair, shortest duration first.
func (s *PlanRepositoryStub) ListActive(ctx context.Context, category model.PlanCategory, tier model.PlanTier) ([]model.Plan, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Plan
	for _, p := range s.Plans {
		if p.Active && p.Category == category && p.Tier == tier {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DurationDays < out[j].DurationDays })
	return out, nil
}

// GetByID resolves one active plan within a category.
func (s *PlanRepositoryStub) GetByID(ctx context.Context, category model.PlanCategory, id string) (*model.Plan, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, p := range s.Plans {
		if p.Active && p.Category == category && p.ID == id {
			plan := p
			return &plan, nil
		}
	}
	return nil, domainErrors.ErrPlanNotFound
}

// ContentRepositoryStub serves config, message, and label maps.
type ContentRepositoryStub struct {
	Config       map[string]string
	Messages     map[string]string
	Labels       map[string]string
	ProvinceList []string
	Err          error
}

// ConfigValue returns a config scalar or not found.
func (s *ContentRepositoryStub) ConfigValue(ctx context.Context, key string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if v, ok := s.Config[key]; ok {
		return v, nil
	}
	return "", domainErrors.ErrNotFound
}

// MessageText returns a message template or not found.
func (s *ContentRepositoryStub) MessageText(ctx context.Context, key string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	if v, ok := s.Messages[key]; ok {
		return v, nil
	}
	return "", domainErrors.ErrNotFound
}

// UILabels returns the label map.
func (s *ContentRepositoryStub) UILabels(ctx context.Context) (map[string]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Labels == nil {
		return map[string]string{}, nil
	}
	return s.Labels, nil
}

// Provinces returns the province enumeration.
func (s *ContentRepositoryStub) Provinces(ctx context.Context) ([]string, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.ProvinceList, nil
}

// SequenceRepositoryStub mints counter values in-memory.
type SequenceRepositoryStub struct {
	mu     sync.Mutex
	Values map[string]int64
	Err    error
}

// Next seeds a missing counter with start, then increments.
func (s *SequenceRepositoryStub) Next(ctx context.Context, key string, start int64) (int64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Values == nil {
		s.Values = make(map[string]int64)
	}
	if _, ok := s.Values[key]; !ok {
		s.Values[key] = start
	}
	s.Values[key]++
	return s.Values[key], nil
}
