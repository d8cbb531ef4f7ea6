package bot

import (
	"context"
	"fmt"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	"github.com/chanddari/subbot/internal/domain/model"
	"github.com/chanddari/subbot/internal/session"
)

// defaultLabels keeps menus usable before the UI label map is seeded.
var defaultLabels = map[string]string{
	"label_start":          "📝 Start signup",
	"label_info":           "ℹ️ My info",
	"label_status":         "🔐 My subscription",
	"label_about":          "📖 About",
	"label_channel":        "📣 Channel",
	"label_support":        "🆘 Support",
	"label_renew":          "🔄 Renew subscription",
	"label_back_step":      "↩️ Back one step",
	"label_back_main":      "🏠 Main menu",
	"label_edit_info":      "✏️ Edit info",
	"label_approve":        "✅ Approve",
	"label_reject":         "❌ Reject",
	"label_tier_trial":     "Trial plan",
	"label_tier_mobile":    "Mobile plan",
	"label_tier_laptop":    "Laptop plan",
	"label_tier_vip":       "V.I.P plan",
	"label_field_name":     "Name",
	"label_field_company":  "Company",
	"label_field_phone":    "Phone",
	"label_field_province": "Province",
	"label_field_email":    "Email",
}

func label(labels map[string]string, key, fallback string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return fallback
}

// mainMenu builds the top-level reply keyboard.
func (e *Engine) mainMenu(ctx context.Context) (telegram.Markup, error) {
	labels, err := e.content.Labels(ctx)
	if err != nil {
		return nil, err
	}
	l := func(key string) telegram.KeyboardButton {
		return telegram.KeyboardButton{Text: label(labels, key, defaultLabels[key])}
	}
	return telegram.ReplyKeyboard{
		Keyboard: [][]telegram.KeyboardButton{
			{l("label_start")},
			{l("label_info"), l("label_status")},
			{l("label_about")},
			{l("label_channel"), l("label_support")},
			{l("label_renew")},
		},
		ResizeKeyboard: true,
	}, nil
}

// stepBackMenu builds the inline navigation attached to most form prompts.
func (e *Engine) stepBackMenu(ctx context.Context) (telegram.Markup, error) {
	labels, err := e.content.Labels(ctx)
	if err != nil {
		return nil, err
	}
	return telegram.InlineKeyboard{InlineKeyboard: [][]telegram.InlineButton{
		{{Text: label(labels, "label_back_step", defaultLabels["label_back_step"]), CallbackData: "back_step"}},
		{{Text: label(labels, "label_back_main", defaultLabels["label_back_main"]), CallbackData: "back_main"}},
	}}, nil
}

// provinceKeyboard lists provinces as quick replies plus a way home.
func (e *Engine) provinceKeyboard(ctx context.Context) (telegram.Markup, error) {
	provinces, err := e.content.Provinces(ctx)
	if err != nil {
		return nil, err
	}
	labels, err := e.content.Labels(ctx)
	if err != nil {
		return nil, err
	}
	keyboard := telegram.ReplyRows(provinces...)
	keyboard.Keyboard = append(keyboard.Keyboard, []telegram.KeyboardButton{
		{Text: label(labels, "label_back_main", defaultLabels["label_back_main"])},
	})
	return keyboard, nil
}

// tierKeyboard lists plan tiers for the flow. The trial row only appears in
// the new-signup flow for still-eligible users.
func (e *Engine) tierKeyboard(ctx context.Context, chatID int64, flow session.Flow) (telegram.Markup, error) {
	labels, err := e.content.Labels(ctx)
	if err != nil {
		return nil, err
	}

	category := flow.Category()
	var rows [][]telegram.InlineButton

	if flow == session.FlowNew {
		eligible, err := e.trialEligible(ctx, chatID)
		if err != nil {
			return nil, err
		}
		if eligible {
			rows = append(rows, []telegram.InlineButton{{
				Text:         label(labels, "label_tier_trial", defaultLabels["label_tier_trial"]),
				CallbackData: fmt.Sprintf("cat:%s:%s", category, model.PlanTierTrial),
			}})
		}
	}

	for _, tier := range []model.PlanTier{model.PlanTierMobile, model.PlanTierLaptop, model.PlanTierVip} {
		key := "label_tier_" + string(tier)
		rows = append(rows, []telegram.InlineButton{{
			Text:         label(labels, key, defaultLabels[key]),
			CallbackData: fmt.Sprintf("cat:%s:%s", category, tier),
		}})
	}

	rows = append(rows, []telegram.InlineButton{{
		Text:         label(labels, "label_back_main", defaultLabels["label_back_main"]),
		CallbackData: "back_main",
	}})

	return telegram.InlineKeyboard{InlineKeyboard: rows}, nil
}

// planKeyboard lists concrete plans of one tier, one button per plan.
func (e *Engine) planKeyboard(ctx context.Context, category model.PlanCategory, plans []model.Plan) (telegram.Markup, error) {
	labels, err := e.content.Labels(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]telegram.InlineButton, 0, len(plans)+1)
	for _, p := range plans {
		text := p.Label
		if text == "" {
			text = fmt.Sprintf("%d days — %d", p.DurationDays, p.Price)
		}
		rows = append(rows, []telegram.InlineButton{{
			Text:         text,
			CallbackData: fmt.Sprintf("plan:%s:%s", category, p.ID),
		}})
	}
	rows = append(rows, []telegram.InlineButton{{
		Text:         label(labels, "label_back_main", defaultLabels["label_back_main"]),
		CallbackData: "back_main",
	}})

	return telegram.InlineKeyboard{InlineKeyboard: rows}, nil
}

// promptStep sends the prompt and keyboard for a dialogue step.
func (e *Engine) promptStep(ctx context.Context, chatID int64, step session.Step, flow session.Flow) error {
	switch step {
	case session.StepName:
		return e.sendStepRetry(ctx, chatID, "ask_fullname")
	case session.StepCompany:
		return e.sendStepRetry(ctx, chatID, "ask_company")
	case session.StepPhone:
		return e.sendStepRetry(ctx, chatID, "ask_phone")
	case session.StepProvince:
		markup, err := e.provinceKeyboard(ctx)
		if err != nil {
			return err
		}
		return e.sendMessage(ctx, chatID, "ask_province", markup)
	case session.StepEmail:
		return e.sendStepRetry(ctx, chatID, "ask_email")
	case session.StepPlan:
		markup, err := e.tierKeyboard(ctx, chatID, flow)
		if err != nil {
			return err
		}
		return e.sendMessage(ctx, chatID, "ask_plan", markup)
	case session.StepReceipt:
		return e.sendStepRetry(ctx, chatID, "ask_receipt")
	default:
		return e.sendMenuMessage(ctx, chatID, "main_menu")
	}
}

// trialEligible combines the global toggle with the one-trial-ever rule.
func (e *Engine) trialEligible(ctx context.Context, chatID int64) (bool, error) {
	allowed, err := e.content.TrialAllowed(ctx)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, nil
	}
	used, err := e.orders.TrialUsed(ctx, chatID)
	if err != nil {
		return false, err
	}
	return !used, nil
}
