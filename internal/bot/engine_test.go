package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	"github.com/chanddari/subbot/internal/content"
	"github.com/chanddari/subbot/internal/domain/model"
	"github.com/chanddari/subbot/internal/metrics"
	"github.com/chanddari/subbot/internal/session"
	"github.com/chanddari/subbot/internal/test"
	"github.com/chanddari/subbot/internal/usecase"
)

const (
	userChat  int64 = 42
	adminChat int64 = -999
)

type testBot struct {
	engine   *Engine
	gateway  *test.GatewayStub
	orders   *test.OrderRepositoryStub
	sessions *session.MemoryStore
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()

	orders := &test.OrderRepositoryStub{}
	plans := &test.PlanRepositoryStub{Plans: []model.Plan{
		{ID: "trial-7", Category: model.PlanCategoryNew, Tier: model.PlanTierTrial, DurationDays: 7, Label: "7-day trial", Active: true},
		{ID: "new-90", Category: model.PlanCategoryNew, Tier: model.PlanTierMobile, DurationDays: 90, Price: 250, Label: "90-day mobile", Active: true},
		{ID: "renew-30", Category: model.PlanCategoryRenew, Tier: model.PlanTierMobile, DurationDays: 30, Price: 100, Label: "30-day renewal", Active: true},
	}}
	contentRepo := &test.ContentRepositoryStub{
		Config: map[string]string{
			"admin_group_id":     "-999",
			"trial_allowed_once": "Y",
			"card_number":        "6037-0000-1111-2222",
			"card_name":          "A. Holder",
			"support_username":   "@support",
			"channel_url":        "https://t.me/somechannel",
		},
		ProvinceList: []string{"Alborz", "Tehran"},
	}

	orderUC := usecase.NewOrderUseCase(orders, &test.SequenceRepositoryStub{})
	catalogUC := usecase.NewCatalogUseCase(plans)
	provider := content.NewProvider(contentRepo, time.Minute)
	sessions := session.NewMemoryStore(time.Hour)
	gateway := &test.GatewayStub{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	engine := NewEngine(sessions, orderUC, catalogUC, provider, gateway, metrics.Noop{}, logger)
	engine.now = func() time.Time { return time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC) }

	return &testBot{engine: engine, gateway: gateway, orders: orders, sessions: sessions}
}

func (b *testBot) sendText(t *testing.T, chatID int64, text string) {
	t.Helper()
	upd := telegram.Update{Message: &telegram.Message{Chat: telegram.Chat{ID: chatID}, Text: text}}
	if err := b.engine.HandleUpdate(context.Background(), upd); err != nil {
		t.Fatalf("HandleUpdate(%q): %v", text, err)
	}
}

func (b *testBot) sendCallback(t *testing.T, chatID int64, data string) {
	t.Helper()
	upd := telegram.Update{CallbackQuery: &telegram.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &telegram.Message{MessageID: 99, Chat: telegram.Chat{ID: chatID}},
	}}
	if err := b.engine.HandleUpdate(context.Background(), upd); err != nil {
		t.Fatalf("HandleUpdate(callback %q): %v", data, err)
	}
}

func (b *testBot) lastTextTo(t *testing.T, chatID int64) string {
	t.Helper()
	sent := b.gateway.SentTo(chatID)
	if len(sent) == 0 {
		t.Fatalf("no messages sent to chat %d", chatID)
	}
	return sent[len(sent)-1].Text
}

func TestStartShowsWelcomeMenu(t *testing.T) {
	bot := newTestBot(t)

	bot.sendText(t, userChat, "/start")

	last := bot.gateway.LastSent()
	if last == nil || !strings.Contains(last.Text, "Welcome") {
		t.Fatalf("expected welcome text, got %+v", last)
	}
	if _, ok := last.Markup.(telegram.ReplyKeyboard); !ok {
		t.Fatalf("expected main menu keyboard, got %T", last.Markup)
	}
}

func TestSignupFlowCreatesPendingOrder(t *testing.T) {
	bot := newTestBot(t)

	bot.sendText(t, userChat, "/start")
	bot.sendText(t, userChat, defaultLabels["label_start"])
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "first and last name") {
		t.Fatalf("expected name prompt, got %q", got)
	}

	// One-word names are rejected.
	bot.sendText(t, userChat, "Ada")
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "first and last name") {
		t.Fatalf("expected name retry, got %q", got)
	}

	bot.sendText(t, userChat, "Ada Lovelace")
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "company") {
		t.Fatalf("expected company prompt, got %q", got)
	}

	bot.sendText(t, userChat, "Analytical Engines Ltd")
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "mobile number") {
		t.Fatalf("expected phone prompt, got %q", got)
	}

	bot.sendText(t, userChat, "12345")
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "09xxxxxxxxx") {
		t.Fatalf("expected phone retry, got %q", got)
	}

	bot.sendText(t, userChat, "09123456789")
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "province") {
		t.Fatalf("expected province prompt, got %q", got)
	}

	bot.sendText(t, userChat, "Atlantis")
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "listed provinces") {
		t.Fatalf("expected province retry, got %q", got)
	}

	bot.sendText(t, userChat, "Tehran")
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "Gmail") {
		t.Fatalf("expected email prompt, got %q", got)
	}

	bot.sendText(t, userChat, "ada@yahoo.com")
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "valid Gmail") {
		t.Fatalf("expected email retry, got %q", got)
	}

	bot.sendText(t, userChat, "ada@gmail.com")
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "plan category") {
		t.Fatalf("expected plan prompt, got %q", got)
	}

	bot.sendCallback(t, userChat, "cat:new:mobile")
	last := bot.gateway.LastSent()
	inline, ok := last.Markup.(telegram.InlineKeyboard)
	if !ok {
		t.Fatalf("expected plan keyboard, got %T", last.Markup)
	}
	if inline.InlineKeyboard[0][0].CallbackData != "plan:new:new-90" {
		t.Fatalf("unexpected plan callback %q", inline.InlineKeyboard[0][0].CallbackData)
	}

	bot.sendCallback(t, userChat, "plan:new:new-90")

	sent := bot.gateway.SentTo(userChat)
	payText := sent[len(sent)-2].Text
	if !strings.Contains(payText, "N-1001") || !strings.Contains(payText, "6037-0000-1111-2222") {
		t.Fatalf("unexpected payment message %q", payText)
	}
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "receipt") {
		t.Fatalf("expected receipt prompt, got %q", got)
	}

	if len(bot.orders.Orders) != 1 {
		t.Fatalf("expected one order, got %d", len(bot.orders.Orders))
	}
	order := bot.orders.Orders[0]
	if order.ID != "N-1001" || order.Status != model.OrderStatusPending {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.Form.FullName != "Ada Lovelace" || order.Form.Province != "Tehran" || order.Form.Email != "ada@gmail.com" {
		t.Fatalf("form not carried onto order: %+v", order.Form)
	}

	sess := bot.sessions.Get(userChat)
	if sess.Step != session.StepReceipt || sess.PendingOrderID != "N-1001" {
		t.Fatalf("unexpected session %+v", sess)
	}
}

func TestReceiptTextForwardedToAdmin(t *testing.T) {
	bot := newTestBot(t)
	seedPendingOrder(bot, "N-1001")
	bot.sessions.Put(userChat, session.Session{Step: session.StepReceipt, PendingOrderID: "N-1001"})

	bot.sendText(t, userChat, "paid via transfer 555")

	if got := bot.orders.Orders[0].ReceiptRef; got != "TEXT:paid via transfer 555" {
		t.Fatalf("unexpected receipt ref %q", got)
	}

	adminMsgs := bot.gateway.SentTo(adminChat)
	if len(adminMsgs) != 1 {
		t.Fatalf("expected one admin notification, got %d", len(adminMsgs))
	}
	body := adminMsgs[0].Text
	if !strings.Contains(body, "Ada Lovelace") || !strings.Contains(body, "N-1001") {
		t.Fatalf("unexpected admin body %q", body)
	}
	inline, ok := adminMsgs[0].Markup.(telegram.InlineKeyboard)
	if !ok {
		t.Fatalf("expected review buttons, got %T", adminMsgs[0].Markup)
	}
	row := inline.InlineKeyboard[0]
	if row[0].CallbackData != "admin_approve:N-1001" || row[1].CallbackData != "admin_reject:N-1001" {
		t.Fatalf("unexpected review callbacks %+v", row)
	}

	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "under review") {
		t.Fatalf("expected waiting message, got %q", got)
	}
	if sess := bot.sessions.Get(userChat); sess.Step != session.StepNone {
		t.Fatalf("session should be cleared, got %+v", sess)
	}
}

func TestReceiptPhotoUsesFileURL(t *testing.T) {
	bot := newTestBot(t)
	seedPendingOrder(bot, "N-1001")
	bot.sessions.Put(userChat, session.Session{Step: session.StepReceipt, PendingOrderID: "N-1001"})

	upd := telegram.Update{Message: &telegram.Message{
		Chat:  telegram.Chat{ID: userChat},
		Photo: []telegram.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	}}
	if err := bot.engine.HandleUpdate(context.Background(), upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := bot.orders.Orders[0].ReceiptRef; got != "https://files.local/large" {
		t.Fatalf("expected largest photo resolved, got %q", got)
	}
}

func TestAdminApproveActivatesOrder(t *testing.T) {
	bot := newTestBot(t)
	seedPendingOrder(bot, "N-1001")

	bot.sendCallback(t, adminChat, "admin_approve:N-1001")

	order := bot.orders.Orders[0]
	if order.Status != model.OrderStatusActive || order.ReceiptStatus != model.ReceiptStatusSuccessful {
		t.Fatalf("unexpected order state %+v", order)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	wantEnd := today.AddDate(0, 0, 90)
	if order.EndDate == nil || !order.EndDate.Equal(wantEnd) {
		t.Fatalf("unexpected end date %v, want %v", order.EndDate, wantEnd)
	}

	if len(bot.gateway.Edited) != 1 || !strings.Contains(bot.gateway.Edited[0].Text, "N-1001") {
		t.Fatalf("expected review message edit, got %+v", bot.gateway.Edited)
	}
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "verified") {
		t.Fatalf("expected verification notice, got %q", got)
	}
}

func TestAdminRejectNotifiesUser(t *testing.T) {
	bot := newTestBot(t)
	seedPendingOrder(bot, "N-1001")

	bot.sendCallback(t, adminChat, "admin_reject:N-1001")

	order := bot.orders.Orders[0]
	if order.ReceiptStatus != model.ReceiptStatusFailed || order.Status != model.OrderStatusPending {
		t.Fatalf("unexpected order state %+v", order)
	}
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "@support") {
		t.Fatalf("expected rejection notice with support contact, got %q", got)
	}
}

func TestAdminDecisionOnMissingOrderIsSilent(t *testing.T) {
	bot := newTestBot(t)

	bot.sendCallback(t, adminChat, "admin_approve:N-9999")

	if len(bot.gateway.Sent) != 0 || len(bot.gateway.Edited) != 0 {
		t.Fatalf("stale decision must be ignored, got %+v %+v", bot.gateway.Sent, bot.gateway.Edited)
	}
}

func TestAdminDigests(t *testing.T) {
	bot := newTestBot(t)

	bot.sendText(t, adminChat, "/pending")
	if got := bot.lastTextTo(t, adminChat); got != "none" {
		t.Fatalf("expected empty digest, got %q", got)
	}

	seedPendingOrder(bot, "N-1001")
	bot.sendText(t, adminChat, "/pending")
	got := bot.lastTextTo(t, adminChat)
	if !strings.Contains(got, "Ada Lovelace") || !strings.Contains(got, "N-1001") || !strings.Contains(got, "2024-03-01 10:00") {
		t.Fatalf("unexpected digest line %q", got)
	}

	bot.sendText(t, adminChat, "/approved")
	if got := bot.lastTextTo(t, adminChat); got != "none" {
		t.Fatalf("expected empty approved digest, got %q", got)
	}

	// Unknown admin slash commands never leak into the user flow.
	before := len(bot.gateway.Sent)
	bot.sendText(t, adminChat, "/whatever")
	if len(bot.gateway.Sent) != before {
		t.Fatal("unknown admin command must be swallowed")
	}
}

func TestTrialFlowViaCallbacks(t *testing.T) {
	bot := newTestBot(t)
	bot.sessions.Put(userChat, session.Session{
		Flow: session.FlowNew,
		Step: session.StepPlan,
		Form: model.Form{FullName: "Ada Lovelace", Phone: "09123456789", Province: "Tehran", Email: "ada@gmail.com"},
	})

	bot.sendCallback(t, userChat, "plan:new:trial-7")

	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "trial subscription is now active") {
		t.Fatalf("expected trial success, got %q", got)
	}
	order := bot.orders.Orders[0]
	if order.ID != "T-1001" || order.Status != model.OrderStatusActive {
		t.Fatalf("unexpected trial order %+v", order)
	}
	if sess := bot.sessions.Get(userChat); sess.Step != session.StepNone {
		t.Fatalf("session should be cleared, got %+v", sess)
	}
}

func TestTrialBlockedAfterFirstUse(t *testing.T) {
	bot := newTestBot(t)
	bot.orders.Orders = []model.Order{{ID: "T-1001", ChatID: userChat, Kind: model.OrderKindTrial}}

	bot.sendCallback(t, userChat, "cat:new:trial")
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "not available for your account") {
		t.Fatalf("expected trial blocked, got %q", got)
	}

	bot.sendCallback(t, userChat, "plan:new:trial-7")
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "not available for your account") {
		t.Fatalf("expected trial blocked on direct plan pick, got %q", got)
	}
	if len(bot.orders.Orders) != 1 {
		t.Fatalf("no new order expected, got %d", len(bot.orders.Orders))
	}
}

func TestTierKeyboardHidesTrialForRenewal(t *testing.T) {
	bot := newTestBot(t)
	bot.sessions.Put(userChat, session.Session{Flow: session.FlowRenew, Step: session.StepPlan})

	markup, err := bot.engine.tierKeyboard(context.Background(), userChat, session.FlowRenew)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inline := markup.(telegram.InlineKeyboard)
	for _, row := range inline.InlineKeyboard {
		for _, btn := range row {
			if strings.Contains(btn.CallbackData, "trial") {
				t.Fatalf("trial button must not appear in renewal flow: %+v", btn)
			}
			if strings.HasPrefix(btn.CallbackData, "cat:") && !strings.HasPrefix(btn.CallbackData, "cat:renew:") {
				t.Fatalf("renewal keyboard must target renew catalog: %+v", btn)
			}
		}
	}
}

func TestBackStepNavigation(t *testing.T) {
	bot := newTestBot(t)
	bot.sessions.Put(userChat, session.Session{Flow: session.FlowNew, Step: session.StepEmail})

	bot.sendCallback(t, userChat, "back_step")

	if sess := bot.sessions.Get(userChat); sess.Step != session.StepProvince {
		t.Fatalf("expected province step, got %s", sess.Step)
	}
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "province") {
		t.Fatalf("expected province prompt, got %q", got)
	}

	// Back from the first step stays on the first step.
	bot.sessions.Put(userChat, session.Session{Flow: session.FlowNew, Step: session.StepName})
	bot.sendCallback(t, userChat, "back_step")
	if sess := bot.sessions.Get(userChat); sess.Step != session.StepName {
		t.Fatalf("expected name step, got %s", sess.Step)
	}
}

func TestBackMainClearsSession(t *testing.T) {
	bot := newTestBot(t)
	bot.sessions.Put(userChat, session.Session{Flow: session.FlowNew, Step: session.StepPhone})

	bot.sendCallback(t, userChat, "back_main")

	if sess := bot.sessions.Get(userChat); sess.Step != session.StepNone {
		t.Fatalf("session should be cleared, got %+v", sess)
	}
}

func TestCancelResetsConversation(t *testing.T) {
	bot := newTestBot(t)
	bot.sessions.Put(userChat, session.Session{Flow: session.FlowNew, Step: session.StepPhone})

	bot.sendText(t, userChat, "/cancel")

	if sess := bot.sessions.Get(userChat); sess.Step != session.StepNone {
		t.Fatalf("session should be cleared, got %+v", sess)
	}
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "Cancelled") {
		t.Fatalf("expected cancel message, got %q", got)
	}
}

func TestRenewStartsAtEmail(t *testing.T) {
	bot := newTestBot(t)

	bot.sendText(t, userChat, defaultLabels["label_renew"])

	sess := bot.sessions.Get(userChat)
	if sess.Flow != session.FlowRenew || sess.Step != session.StepEmail {
		t.Fatalf("unexpected session %+v", sess)
	}
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "Gmail") {
		t.Fatalf("expected email prompt, got %q", got)
	}
}

func TestEditInfoRestartsForm(t *testing.T) {
	bot := newTestBot(t)

	bot.sendCallback(t, userChat, "edit_info")

	sess := bot.sessions.Get(userChat)
	if sess.Flow != session.FlowNew || sess.Step != session.StepName {
		t.Fatalf("unexpected session %+v", sess)
	}
}

func TestProfileShowsLatestForm(t *testing.T) {
	bot := newTestBot(t)

	bot.sendText(t, userChat, defaultLabels["label_info"])
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "No registration") {
		t.Fatalf("expected empty profile, got %q", got)
	}

	seedPendingOrder(bot, "N-1001")
	bot.sendText(t, userChat, defaultLabels["label_info"])
	got := bot.lastTextTo(t, userChat)
	if !strings.Contains(got, "Ada Lovelace") || !strings.Contains(got, "Tehran") {
		t.Fatalf("unexpected profile %q", got)
	}
}

func TestSubscriptionStatus(t *testing.T) {
	bot := newTestBot(t)

	bot.sendText(t, userChat, defaultLabels["label_status"])
	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "no active subscription") {
		t.Fatalf("expected no-subscription message, got %q", got)
	}

	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	bot.orders.Orders = []model.Order{{
		ID:        "N-1001",
		ChatID:    userChat,
		Kind:      model.OrderKindNew,
		PlanLabel: "90-day mobile",
		Status:    model.OrderStatusActive,
		EndDate:   &end,
		DaysLeft:  22,
	}}

	bot.sendText(t, userChat, defaultLabels["label_status"])
	got := bot.lastTextTo(t, userChat)
	if !strings.Contains(got, "90-day mobile") || !strings.Contains(got, "2024-04-01") || !strings.Contains(got, "22") {
		t.Fatalf("unexpected status %q", got)
	}
}

func TestUnknownTextFallsBackToHint(t *testing.T) {
	bot := newTestBot(t)

	bot.sendText(t, userChat, "what is this")

	if got := bot.lastTextTo(t, userChat); !strings.Contains(got, "menu options") {
		t.Fatalf("expected fallback hint, got %q", got)
	}
}

func seedPendingOrder(bot *testBot, id string) {
	bot.orders.Orders = append(bot.orders.Orders, model.Order{
		ID:     id,
		ChatID: userChat,
		Kind:   model.OrderKindNew,
		Form: model.Form{
			FullName: "Ada Lovelace",
			Company:  "Analytical Engines Ltd",
			Phone:    "09123456789",
			Province: "Tehran",
			Email:    "ada@gmail.com",
		},
		PlanKey:       "new-90",
		PlanLabel:     "90-day mobile",
		Amount:        250,
		DurationDays:  90,
		Status:        model.OrderStatusPending,
		ReceiptStatus: model.ReceiptStatusPending,
		CreatedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	})
}
