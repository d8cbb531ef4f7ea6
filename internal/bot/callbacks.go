package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	domainErrors "github.com/chanddari/subbot/internal/domain/errors"
	"github.com/chanddari/subbot/internal/domain/model"
	"github.com/chanddari/subbot/internal/session"
)

func (e *Engine) handleCallback(ctx context.Context, cq *telegram.CallbackQuery) error {
	if cq.Message == nil {
		return nil
	}
	chatID := cq.Message.Chat.ID
	data := cq.Data

	switch {
	case data == "back_main":
		e.sessions.Clear(chatID)
		return e.sendMenuMessage(ctx, chatID, "main_menu")

	case data == "back_step":
		return e.handleBackStep(ctx, chatID)

	case data == "edit_info":
		e.sessions.Put(chatID, session.Session{Flow: session.FlowNew, Step: session.StepName})
		return e.promptStep(ctx, chatID, session.StepName, session.FlowNew)

	case strings.HasPrefix(data, "cat:"):
		return e.handleTierSelection(ctx, chatID, data)

	case strings.HasPrefix(data, "plan:"):
		return e.handlePlanSelection(ctx, chatID, data)

	case strings.HasPrefix(data, "admin_approve:"):
		return e.handleAdminDecision(ctx, cq, true, strings.TrimPrefix(data, "admin_approve:"))

	case strings.HasPrefix(data, "admin_reject:"):
		return e.handleAdminDecision(ctx, cq, false, strings.TrimPrefix(data, "admin_reject:"))

	default:
		return nil
	}
}

// handleBackStep recomputes the previous step from the fixed step order and
// re-prompts. Idle sessions fall back to the main menu.
func (e *Engine) handleBackStep(ctx context.Context, chatID int64) error {
	sess := e.sessions.Get(chatID)
	if sess.Step == session.StepNone {
		return e.sendMenuMessage(ctx, chatID, "main_menu")
	}
	sess.Step = sess.Step.Prev()
	e.sessions.Put(chatID, sess)
	return e.promptStep(ctx, chatID, sess.Step, sess.Flow)
}

func parseCallbackParts(data string, wantPrefix string) (model.PlanCategory, string, bool) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[0] != wantPrefix {
		return "", "", false
	}
	switch model.PlanCategory(parts[1]) {
	case model.PlanCategoryNew, model.PlanCategoryRenew:
		return model.PlanCategory(parts[1]), parts[2], true
	default:
		return "", "", false
	}
}

// handleTierSelection presents the concrete plans of a chosen tier.
func (e *Engine) handleTierSelection(ctx context.Context, chatID int64, data string) error {
	category, rawTier, ok := parseCallbackParts(data, "cat")
	if !ok {
		return nil
	}
	tier := model.PlanTier(rawTier)

	if tier == model.PlanTierTrial {
		eligible, err := e.trialEligible(ctx, chatID)
		if err != nil {
			return err
		}
		if !eligible {
			return e.sendMessage(ctx, chatID, "trial_blocked", nil)
		}
	}

	plans, err := e.catalog.List(ctx, category, tier)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		return e.sendMessage(ctx, chatID, "no_plans_available", nil)
	}

	markup, err := e.planKeyboard(ctx, category, plans)
	if err != nil {
		return err
	}
	return e.sendMessage(ctx, chatID, "plan_options", markup)
}

// handlePlanSelection resolves the exact plan and creates the order.
func (e *Engine) handlePlanSelection(ctx context.Context, chatID int64, data string) error {
	category, planID, ok := parseCallbackParts(data, "plan")
	if !ok {
		return nil
	}

	plan, err := e.catalog.Get(ctx, category, planID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrPlanNotFound) {
			return e.sendMessage(ctx, chatID, "plan_not_found", nil)
		}
		return err
	}

	sess := e.sessions.Get(chatID)

	counterStart, err := e.content.CounterStart(ctx)
	if err != nil {
		return err
	}

	if plan.Tier == model.PlanTierTrial {
		return e.createTrialOrder(ctx, chatID, sess, plan, counterStart)
	}
	return e.createPaidOrder(ctx, chatID, sess, plan, counterStart)
}

func (e *Engine) createTrialOrder(ctx context.Context, chatID int64, sess session.Session, plan *model.Plan, counterStart int64) error {
	// Re-validated right before creation; the repository's uniqueness
	// constraint catches whatever slips through concurrently.
	eligible, err := e.trialEligible(ctx, chatID)
	if err != nil {
		return err
	}
	if !eligible {
		return e.sendMessage(ctx, chatID, "trial_blocked", nil)
	}

	order, err := e.orders.CreateTrial(ctx, chatID, sess.Form, plan, counterStart)
	if err != nil {
		if errors.Is(err, domainErrors.ErrTrialAlreadyUsed) {
			return e.sendMessage(ctx, chatID, "trial_blocked", nil)
		}
		return err
	}

	e.metrics.RecordOrderCreated(string(order.Kind))
	e.sessions.Clear(chatID)
	return e.sendMenuMessage(ctx, chatID, "trial_success")
}

func (e *Engine) createPaidOrder(ctx context.Context, chatID int64, sess session.Session, plan *model.Plan, counterStart int64) error {
	order, err := e.orders.CreatePaid(ctx, chatID, sess.Form, plan, counterStart)
	if err != nil {
		return err
	}
	e.metrics.RecordOrderCreated(string(order.Kind))

	cardNumber, err := e.content.ConfigValue(ctx, "card_number")
	if err != nil {
		return err
	}
	cardName, err := e.content.ConfigValue(ctx, "card_name")
	if err != nil {
		return err
	}

	now := e.now()
	text, err := e.content.Render(ctx, "pay_msg", map[string]string{
		"full_name":   sess.Form.FullName,
		"plan_label":  plan.Label,
		"order_id":    order.ID,
		"date":        now.UTC().Format("2006-01-02"),
		"time":        now.UTC().Format("15:04"),
		"price":       formatAmount(plan.Price),
		"card_number": cardNumber,
		"card_name":   cardName,
	})
	if err != nil {
		return err
	}
	if err := e.gateway.SendMessage(ctx, chatID, text, nil); err != nil {
		return err
	}

	sess.Step = session.StepReceipt
	sess.PendingOrderID = order.ID
	e.sessions.Put(chatID, sess)

	return e.promptStep(ctx, chatID, session.StepReceipt, sess.Flow)
}
