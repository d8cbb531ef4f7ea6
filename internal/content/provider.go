package content

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/chanddari/subbot/internal/domain/errors"
	"github.com/chanddari/subbot/internal/domain/repository"
)

// Config keys understood by the provider.
const (
	KeyAdminChatID    = "admin_group_id"
	KeyTrialAllowed   = "trial_allowed_once"
	KeyAutoDeactivate = "auto_deactivate_on_zero_days"
	KeyWarnDays       = "warn_days_left"
	KeyCounterStart   = "order_counter_start"
	KeyCardNumber     = "card_number"
	KeyCardName       = "card_name"
	KeySupportContact = "support_username"
	KeyChannelURL     = "channel_url"
)

const (
	defaultWarnDays     = 5
	defaultCounterStart = 1000
)

// defaultMessages keeps the bot responsive when a content key has not been
// seeded yet. Operators are expected to override all of these.
var defaultMessages = map[string]string{
	"welcome_start":             "Welcome! Use the menu below to get started.",
	"main_menu":                 "Main menu:",
	"cancelled":                 "Cancelled. Use the menu to continue.",
	"ask_fullname":              "Please send your first and last name.",
	"ask_company":               "Which company or organization are you with?",
	"ask_phone":                 "Please send your mobile number (09xxxxxxxxx).",
	"ask_province":              "Select your province from the list.",
	"ask_email":                 "Please send your Gmail address.",
	"ask_plan":                  "Choose a plan category:",
	"plan_options":              "Choose a plan:",
	"name_invalid":              "Please send both your first and last name.",
	"phone_invalid":             "That doesn't look like a valid mobile number. Use the 09xxxxxxxxx format.",
	"province_invalid":          "Please pick one of the listed provinces.",
	"email_invalid":             "Please send a valid Gmail address.",
	"no_plans_available":        "No plans are currently available in this category.",
	"plan_not_found":            "That plan is no longer available.",
	"trial_blocked":             "The trial plan is not available for your account.",
	"trial_success":             "Your trial subscription is now active.",
	"pay_msg":                   "Order {order_id} for {plan_label}: please transfer {price} to card {card_number} ({card_name}).",
	"ask_receipt":               "Please send the payment receipt as a photo or file.",
	"receipt_invalid":           "Please send the receipt as a photo, a file, or a short note.",
	"receipt_waiting":           "Thanks! Your receipt is under review.",
	"receipt_verified_user":     "Your payment was verified and your subscription is active.",
	"receipt_rejected_user":     "Your receipt was rejected. Contact {support_username} for help.",
	"admin_notify_new_receipt":  "New receipt from {full_name} awaits review.",
	"admin_list_empty":          "none",
	"admin_approved_note":       "Approved",
	"admin_rejected_note":       "Rejected",
	"profile_empty":             "No registration on file yet.",
	"no_active_subscription":    "You have no active subscription.",
	"subscription_status":       "Plan: {plan_label}\nUntil: {end_date}\nDays left: {days_left}",
	"about_text":                "About this service.",
	"invalid_option":            "Please use the menu options.",
	"expire_warning_template":   "{full_name}, your {plan_label} subscription expires in {warn_days_left} days.",
	"auto_deactivated_on_zero":  "Your subscription has expired.",
}

type cacheEntry struct {
	value any
	exp   time.Time
}

// Provider serves prompts, labels, and config scalars with a bounded-staleness
// read cache in front of the content repository.
type Provider struct {
	repo repository.ContentRepository
	ttl  time.Duration
	now  func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewProvider constructs a caching content provider.
func NewProvider(repo repository.ContentRepository, ttl time.Duration) *Provider {
	return &Provider{
		repo:  repo,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
}

func (p *Provider) cached(key string) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.cache[key]
	if !ok {
		return nil, false
	}
	if p.now().After(entry.exp) {
		delete(p.cache, key)
		return nil, false
	}
	return entry.value, true
}

func (p *Provider) put(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache[key] = cacheEntry{value: value, exp: p.now().Add(p.ttl)}
}

// ConfigValue returns the raw config scalar, "" when the key is absent.
func (p *Provider) ConfigValue(ctx context.Context, key string) (string, error) {
	cacheKey := "config:" + key
	if v, ok := p.cached(cacheKey); ok {
		return v.(string), nil
	}
	value, err := p.repo.ConfigValue(ctx, key)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			p.put(cacheKey, "")
			return "", nil
		}
		return "", err
	}
	p.put(cacheKey, value)
	return value, nil
}

// Message returns the text for a key, falling back to built-in defaults.
func (p *Provider) Message(ctx context.Context, key string) (string, error) {
	cacheKey := "msg:" + key
	if v, ok := p.cached(cacheKey); ok {
		return v.(string), nil
	}
	text, err := p.repo.MessageText(ctx, key)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			text = defaultMessages[key]
		} else {
			return "", err
		}
	}
	p.put(cacheKey, text)
	return text, nil
}

// Render fetches a message template and substitutes {field} placeholders.
func (p *Provider) Render(ctx context.Context, key string, vars map[string]string) (string, error) {
	text, err := p.Message(ctx, key)
	if err != nil {
		return "", err
	}
	return Substitute(text, vars), nil
}

// Substitute replaces {field} placeholders in template text.
func Substitute(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for field, value := range vars {
		pairs = append(pairs, "{"+field+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Labels returns the UI label map.
func (p *Provider) Labels(ctx context.Context) (map[string]string, error) {
	const cacheKey = "ui:labels"
	if v, ok := p.cached(cacheKey); ok {
		return v.(map[string]string), nil
	}
	labels, err := p.repo.UILabels(ctx)
	if err != nil {
		return nil, err
	}
	p.put(cacheKey, labels)
	return labels, nil
}

// Provinces returns the province enumeration, sorted by name.
func (p *Provider) Provinces(ctx context.Context) ([]string, error) {
	const cacheKey = "provinces"
	if v, ok := p.cached(cacheKey); ok {
		return v.([]string), nil
	}
	provinces, err := p.repo.Provinces(ctx)
	if err != nil {
		return nil, err
	}
	p.put(cacheKey, provinces)
	return provinces, nil
}

// AdminChatID returns the designated admin chat, 0 when unset.
func (p *Provider) AdminChatID(ctx context.Context) (int64, error) {
	raw, err := p.ConfigValue(ctx, KeyAdminChatID)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return id, nil
}

// TrialAllowed reports the global trial toggle.
func (p *Provider) TrialAllowed(ctx context.Context) (bool, error) {
	raw, err := p.ConfigValue(ctx, KeyTrialAllowed)
	if err != nil {
		return false, err
	}
	return raw == "Y", nil
}

// AutoDeactivate reports whether the sweep expires zero-day subscriptions.
func (p *Provider) AutoDeactivate(ctx context.Context) (bool, error) {
	raw, err := p.ConfigValue(ctx, KeyAutoDeactivate)
	if err != nil {
		return false, err
	}
	return raw == "Y", nil
}

// WarnDays returns the expiry warning threshold.
func (p *Provider) WarnDays(ctx context.Context) (int, error) {
	raw, err := p.ConfigValue(ctx, KeyWarnDays)
	if err != nil {
		return 0, err
	}
	if n, convErr := strconv.Atoi(raw); convErr == nil && n > 0 {
		return n, nil
	}
	return defaultWarnDays, nil
}

// CounterStart returns the order counter seed.
func (p *Provider) CounterStart(ctx context.Context) (int64, error) {
	raw, err := p.ConfigValue(ctx, KeyCounterStart)
	if err != nil {
		return 0, err
	}
	if n, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil && n > 0 {
		return n, nil
	}
	return defaultCounterStart, nil
}
