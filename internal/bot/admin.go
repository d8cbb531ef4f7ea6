package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chanddari/subbot/internal/adapter/telegram"
	domainErrors "github.com/chanddari/subbot/internal/domain/errors"
	"github.com/chanddari/subbot/internal/domain/model"
)

func formatAmount(v int64) string {
	return strconv.FormatInt(v, 10)
}

// handleAdminCommand serves list digests inside the admin chat. Unknown
// slash commands are swallowed so they never fall into the user flow.
func (e *Engine) handleAdminCommand(ctx context.Context, chatID int64, text string) error {
	switch text {
	case "/pending":
		return e.sendDigest(ctx, chatID, model.ReceiptStatusPending, true)
	case "/approved":
		return e.sendDigest(ctx, chatID, model.ReceiptStatusSuccessful, false)
	case "/rejected":
		return e.sendDigest(ctx, chatID, model.ReceiptStatusFailed, false)
	default:
		return nil
	}
}

func (e *Engine) sendDigest(ctx context.Context, chatID int64, status model.ReceiptStatus, withDetails bool) error {
	orders, err := e.orders.ListByReceiptStatus(ctx, status)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return e.sendMessage(ctx, chatID, "admin_list_empty", nil)
	}

	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		if withDetails {
			lines = append(lines, fmt.Sprintf("%s — %s — %s — %d — %s",
				o.Form.FullName, o.ID, o.PlanLabel, o.Amount, o.CreatedAt.Format("2006-01-02 15:04")))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s — %s — %s", o.Form.FullName, o.ID, o.PlanLabel))
	}
	return e.gateway.SendMessage(ctx, chatID, strings.Join(lines, "\n"), nil)
}

// handleAdminDecision resolves an approve/reject button press. A stale press
// against a vanished order is ignored; pressing twice just reapplies the
// same terminal receipt state.
func (e *Engine) handleAdminDecision(ctx context.Context, cq *telegram.CallbackQuery, approve bool, orderID string) error {
	if orderID == "" {
		return nil
	}

	var (
		order *model.Order
		err   error
	)
	if approve {
		order, err = e.orders.Approve(ctx, orderID)
	} else {
		order, err = e.orders.Reject(ctx, orderID)
	}
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil
		}
		return err
	}

	note := "✅ approved"
	if !approve {
		note = "❌ rejected"
	}
	stamp := e.now().UTC().Format("2006-01-02 15:04")
	edited := fmt.Sprintf("%s %s — %s", note, order.ID, stamp)
	if err := e.gateway.EditMessageText(ctx, cq.Message.Chat.ID, cq.Message.MessageID, edited); err != nil {
		e.logger.Warn("edit admin review message failed", "order", order.ID, "error", err)
	}

	return e.notifyDecision(ctx, order, approve)
}

// notifyDecision tells the user how their receipt was judged.
func (e *Engine) notifyDecision(ctx context.Context, order *model.Order, approve bool) error {
	key := "receipt_verified_user"
	if !approve {
		key = "receipt_rejected_user"
	}

	support, err := e.content.ConfigValue(ctx, "support_username")
	if err != nil {
		return err
	}

	endDate := ""
	if order.EndDate != nil {
		endDate = order.EndDate.Format("2006-01-02")
	}
	text, err := e.content.Render(ctx, key, map[string]string{
		"full_name":        order.Form.FullName,
		"order_id":         order.ID,
		"plan_label":       order.PlanLabel,
		"end_date":         endDate,
		"support_username": support,
	})
	if err != nil {
		return err
	}

	menu, err := e.mainMenu(ctx)
	if err != nil {
		return err
	}
	return e.gateway.SendMessage(ctx, order.ChatID, text, menu)
}
