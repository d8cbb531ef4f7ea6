package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	domainErrors "github.com/chanddari/subbot/internal/domain/errors"
	"github.com/chanddari/subbot/internal/domain/model"
	"github.com/chanddari/subbot/internal/metrics"
	"github.com/chanddari/subbot/internal/session"
	"github.com/chanddari/subbot/internal/usecase"
)

// Orders is the order lifecycle surface the engine drives.
type Orders interface {
	CreateTrial(ctx context.Context, chatID int64, form model.Form, plan *model.Plan, counterStart int64) (*model.Order, error)
	CreatePaid(ctx context.Context, chatID int64, form model.Form, plan *model.Plan, counterStart int64) (*model.Order, error)
	AttachReceipt(ctx context.Context, orderID, receiptRef string) error
	Approve(ctx context.Context, orderID string) (*model.Order, error)
	Reject(ctx context.Context, orderID string) (*model.Order, error)
	GetByID(ctx context.Context, orderID string) (*model.Order, error)
	TrialUsed(ctx context.Context, chatID int64) (bool, error)
	LatestByChat(ctx context.Context, chatID int64) (*model.Order, error)
	LatestActiveByChat(ctx context.Context, chatID int64) (*model.Order, error)
	ListByReceiptStatus(ctx context.Context, status model.ReceiptStatus) ([]model.Order, error)
}

// Catalog resolves plans offered to the user.
type Catalog interface {
	List(ctx context.Context, category model.PlanCategory, tier model.PlanTier) ([]model.Plan, error)
	Get(ctx context.Context, category model.PlanCategory, id string) (*model.Plan, error)
}

// Content supplies prompts, labels, and config scalars.
type Content interface {
	Message(ctx context.Context, key string) (string, error)
	Render(ctx context.Context, key string, vars map[string]string) (string, error)
	ConfigValue(ctx context.Context, key string) (string, error)
	Labels(ctx context.Context) (map[string]string, error)
	Provinces(ctx context.Context) ([]string, error)
	AdminChatID(ctx context.Context) (int64, error)
	TrialAllowed(ctx context.Context) (bool, error)
	CounterStart(ctx context.Context) (int64, error)
}

// Engine is the conversation state machine.
type Engine struct {
	sessions session.Store
	orders   Orders
	catalog  Catalog
	content  Content
	gateway  telegram.Client
	metrics  metrics.Collector
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine constructs the conversation engine.
func NewEngine(sessions session.Store, orders Orders, catalog Catalog, content Content, gateway telegram.Client, collector metrics.Collector, logger *slog.Logger) *Engine {
	return &Engine{
		sessions: sessions,
		orders:   orders,
		catalog:  catalog,
		content:  content,
		gateway:  gateway,
		metrics:  collector,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleUpdate processes one inbound event. Validation failures and
// business-rule denials are answered inline; only collaborator failures
// surface as errors, leaving state unchanged.
func (e *Engine) HandleUpdate(ctx context.Context, upd telegram.Update) error {
	switch {
	case upd.CallbackQuery != nil:
		e.metrics.RecordUpdate("callback")
		return e.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		e.metrics.RecordUpdate("message")
		return e.handleMessage(ctx, upd.Message)
	default:
		e.metrics.RecordUpdate("other")
		return nil
	}
}

func (e *Engine) handleMessage(ctx context.Context, m *telegram.Message) error {
	chatID := m.Chat.ID
	text := strings.TrimSpace(m.Text)

	adminID, err := e.content.AdminChatID(ctx)
	if err != nil {
		return err
	}
	if adminID != 0 && chatID == adminID && strings.HasPrefix(text, "/") {
		return e.handleAdminCommand(ctx, chatID, text)
	}

	if isCancel(text) {
		e.sessions.Clear(chatID)
		return e.sendMenuMessage(ctx, chatID, "cancelled")
	}

	labels, err := e.content.Labels(ctx)
	if err != nil {
		return err
	}

	if text == "/start" || (text != "" && text == labels["label_back_main"]) {
		e.sessions.Clear(chatID)
		return e.sendMenuMessage(ctx, chatID, "welcome_start")
	}

	if handled, err := e.handleMenuSelection(ctx, chatID, text, labels); handled || err != nil {
		return err
	}

	sess := e.sessions.Get(chatID)
	if handled, err := e.handleStep(ctx, m, sess); handled || err != nil {
		return err
	}

	return e.sendMessage(ctx, chatID, "invalid_option", nil)
}

func isCancel(text string) bool {
	switch strings.ToLower(text) {
	case "/cancel", "cancel":
		return true
	default:
		return false
	}
}

// handleMenuSelection routes top-level menu labels outside the step machine.
func (e *Engine) handleMenuSelection(ctx context.Context, chatID int64, text string, labels map[string]string) (bool, error) {
	if text == "" {
		return false, nil
	}
	switch text {
	case label(labels, "label_about", defaultLabels["label_about"]):
		return true, e.sendMenuMessage(ctx, chatID, "about_text")
	case label(labels, "label_channel", defaultLabels["label_channel"]):
		channel, err := e.content.ConfigValue(ctx, "channel_url")
		if err != nil {
			return true, err
		}
		return true, e.gateway.SendMessage(ctx, chatID, channel, nil)
	case label(labels, "label_support", defaultLabels["label_support"]):
		support, err := e.content.ConfigValue(ctx, "support_username")
		if err != nil {
			return true, err
		}
		return true, e.gateway.SendMessage(ctx, chatID, support, nil)
	case label(labels, "label_info", defaultLabels["label_info"]):
		return true, e.sendProfile(ctx, chatID, labels)
	case label(labels, "label_status", defaultLabels["label_status"]):
		return true, e.sendSubscriptionStatus(ctx, chatID)
	case label(labels, "label_renew", defaultLabels["label_renew"]):
		// Personal info is assumed on file; renewal starts at email.
		e.sessions.Put(chatID, session.Session{Flow: session.FlowRenew, Step: session.StepEmail})
		return true, e.promptStep(ctx, chatID, session.StepEmail, session.FlowRenew)
	case label(labels, "label_start", defaultLabels["label_start"]):
		e.sessions.Put(chatID, session.Session{Flow: session.FlowNew, Step: session.StepName})
		return true, e.promptStep(ctx, chatID, session.StepName, session.FlowNew)
	default:
		return false, nil
	}
}

// handleStep advances the form state machine by one input.
func (e *Engine) handleStep(ctx context.Context, m *telegram.Message, sess session.Session) (bool, error) {
	chatID := m.Chat.ID
	text := strings.TrimSpace(m.Text)

	switch sess.Step {
	case session.StepName:
		if !usecase.ValidFullName(text) {
			return true, e.sendStepRetry(ctx, chatID, "name_invalid")
		}
		sess.Form.FullName = text
		sess.Step = session.StepCompany
		e.sessions.Put(chatID, sess)
		return true, e.promptStep(ctx, chatID, sess.Step, sess.Flow)

	case session.StepCompany:
		sess.Form.Company = text
		sess.Step = session.StepPhone
		e.sessions.Put(chatID, sess)
		return true, e.promptStep(ctx, chatID, sess.Step, sess.Flow)

	case session.StepPhone:
		if !usecase.ValidPhone(text) {
			return true, e.sendStepRetry(ctx, chatID, "phone_invalid")
		}
		sess.Form.Phone = text
		sess.Step = session.StepProvince
		e.sessions.Put(chatID, sess)
		return true, e.promptStep(ctx, chatID, sess.Step, sess.Flow)

	case session.StepProvince:
		provinces, err := e.content.Provinces(ctx)
		if err != nil {
			return true, err
		}
		if !containsExact(provinces, text) {
			markup, err := e.provinceKeyboard(ctx)
			if err != nil {
				return true, err
			}
			return true, e.sendMessage(ctx, chatID, "province_invalid", markup)
		}
		sess.Form.Province = text
		sess.Step = session.StepEmail
		e.sessions.Put(chatID, sess)
		return true, e.promptStep(ctx, chatID, sess.Step, sess.Flow)

	case session.StepEmail:
		if !usecase.ValidEmail(text) {
			return true, e.sendStepRetry(ctx, chatID, "email_invalid")
		}
		sess.Form.Email = text
		sess.Step = session.StepPlan
		e.sessions.Put(chatID, sess)
		return true, e.promptStep(ctx, chatID, sess.Step, sess.Flow)

	case session.StepReceipt:
		return true, e.handleReceipt(ctx, m, sess)

	default:
		return false, nil
	}
}

func containsExact(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// handleReceipt accepts a photo, a file, or a free-text note as proof of
// payment and forwards it to the admin chat for review.
func (e *Engine) handleReceipt(ctx context.Context, m *telegram.Message, sess session.Session) error {
	chatID := m.Chat.ID
	text := strings.TrimSpace(m.Text)

	var receiptRef string
	switch {
	case len(m.Photo) > 0:
		url, err := e.gateway.FileURL(ctx, m.Photo[len(m.Photo)-1].FileID)
		if err != nil {
			return err
		}
		receiptRef = url
	case m.Document != nil:
		url, err := e.gateway.FileURL(ctx, m.Document.FileID)
		if err != nil {
			return err
		}
		receiptRef = url
	case text != "" && !strings.HasPrefix(text, "/"):
		receiptRef = "TEXT:" + text
	default:
		return e.sendMessage(ctx, chatID, "receipt_invalid", nil)
	}

	if sess.PendingOrderID == "" {
		e.sessions.Clear(chatID)
		return e.sendMenuMessage(ctx, chatID, "invalid_option")
	}

	if err := e.orders.AttachReceipt(ctx, sess.PendingOrderID, receiptRef); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			e.sessions.Clear(chatID)
			return e.sendMenuMessage(ctx, chatID, "plan_not_found")
		}
		return err
	}

	if err := e.sendMenuMessage(ctx, chatID, "receipt_waiting"); err != nil {
		return err
	}

	if err := e.notifyAdminReceipt(ctx, sess.PendingOrderID, receiptRef); err != nil {
		return err
	}

	e.sessions.Clear(chatID)
	return nil
}

// notifyAdminReceipt forwards a review request with approve/reject controls.
func (e *Engine) notifyAdminReceipt(ctx context.Context, orderID, receiptRef string) error {
	adminID, err := e.content.AdminChatID(ctx)
	if err != nil {
		return err
	}
	if adminID == 0 {
		e.logger.Warn("admin chat not configured, receipt left unreviewed", slog.String("order", orderID))
		return nil
	}

	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	heading, err := e.content.Render(ctx, "admin_notify_new_receipt", map[string]string{
		"full_name": order.Form.FullName,
	})
	if err != nil {
		return err
	}

	labels, err := e.content.Labels(ctx)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("%s\nOrder: %s\nPlan: %s\nAmount: %d\nUser: %d\nReceipt: %s",
		heading, order.ID, order.PlanLabel, order.Amount, order.ChatID, truncate(receiptRef, 200))

	markup := telegram.InlineKeyboard{InlineKeyboard: [][]telegram.InlineButton{{
		{Text: label(labels, "label_approve", defaultLabels["label_approve"]), CallbackData: "admin_approve:" + order.ID},
		{Text: label(labels, "label_reject", defaultLabels["label_reject"]), CallbackData: "admin_reject:" + order.ID},
	}}}

	return e.gateway.SendMessage(ctx, adminID, body, markup)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// sendProfile shows the latest registration's form data.
func (e *Engine) sendProfile(ctx context.Context, chatID int64, labels map[string]string) error {
	order, err := e.orders.LatestByChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return e.sendMenuMessage(ctx, chatID, "profile_empty")
		}
		return err
	}

	lines := strings.Join([]string{
		label(labels, "label_field_name", defaultLabels["label_field_name"]) + ": " + order.Form.FullName,
		label(labels, "label_field_company", defaultLabels["label_field_company"]) + ": " + order.Form.Company,
		label(labels, "label_field_phone", defaultLabels["label_field_phone"]) + ": " + order.Form.Phone,
		label(labels, "label_field_province", defaultLabels["label_field_province"]) + ": " + order.Form.Province,
		label(labels, "label_field_email", defaultLabels["label_field_email"]) + ": " + order.Form.Email,
	}, "\n")

	markup := telegram.InlineKeyboard{InlineKeyboard: [][]telegram.InlineButton{
		{{Text: label(labels, "label_edit_info", defaultLabels["label_edit_info"]), CallbackData: "edit_info"}},
		{{Text: label(labels, "label_back_main", defaultLabels["label_back_main"]), CallbackData: "back_main"}},
	}}
	return e.gateway.SendMessage(ctx, chatID, lines, markup)
}

// sendSubscriptionStatus shows the latest active order's plan and expiry.
func (e *Engine) sendSubscriptionStatus(ctx context.Context, chatID int64) error {
	order, err := e.orders.LatestActiveByChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return e.sendMessage(ctx, chatID, "no_active_subscription", nil)
		}
		return err
	}

	endDate := ""
	if order.EndDate != nil {
		endDate = order.EndDate.Format("2006-01-02")
	}
	text, err := e.content.Render(ctx, "subscription_status", map[string]string{
		"plan_label": order.PlanLabel,
		"end_date":   endDate,
		"days_left":  fmt.Sprintf("%d", order.DaysLeft),
	})
	if err != nil {
		return err
	}
	return e.gateway.SendMessage(ctx, chatID, text, nil)
}

// sendMessage sends a content-keyed message with optional markup.
func (e *Engine) sendMessage(ctx context.Context, chatID int64, key string, markup telegram.Markup) error {
	text, err := e.content.Message(ctx, key)
	if err != nil {
		return err
	}
	return e.gateway.SendMessage(ctx, chatID, text, markup)
}

// sendMenuMessage sends a content-keyed message with the main menu keyboard.
func (e *Engine) sendMenuMessage(ctx context.Context, chatID int64, key string) error {
	menu, err := e.mainMenu(ctx)
	if err != nil {
		return err
	}
	return e.sendMessage(ctx, chatID, key, menu)
}

// sendStepRetry re-prompts the current step with guidance text.
func (e *Engine) sendStepRetry(ctx context.Context, chatID int64, key string) error {
	markup, err := e.stepBackMenu(ctx)
	if err != nil {
		return err
	}
	return e.sendMessage(ctx, chatID, key, markup)
}
