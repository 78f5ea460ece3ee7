package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/bhandaridiwash/newchatbot/internal/order"
	"github.com/bhandaridiwash/newchatbot/internal/session"
)

var statusEmoji = map[string]string{
	order.StatusCreated:   "🕐",
	order.StatusConfirmed: "✅",
	order.StatusPreparing: "👨‍🍳",
	order.StatusReady:     "🛍️",
	order.StatusCompleted: "🎉",
	order.StatusCancelled: "❌",
	order.StatusRejected:  "🚫",
}

const historyLimit = 5

func (h *Handlers) showOrderHistory(ctx context.Context, _ Args, userID string, sc session.Context) (session.Context, error) {
	orders, err := h.orders.OrderHistory(ctx, userID, historyLimit)
	if err != nil {
		return sc, h.sendRetry(ctx, userID, sc, fmt.Errorf("load order history: %w", err))
	}
	if len(orders) == 0 {
		h.sendText(ctx, userID, sc, "You haven't ordered with us yet! Say \"menu\" to place your first order 🍽️")
		return sc, nil
	}

	var b strings.Builder
	b.WriteString("📋 Your Recent Orders\n")
	for _, o := range orders {
		emoji := statusEmoji[o.Status]
		if emoji == "" {
			emoji = "🕐"
		}
		pay := o.PaymentMethod
		if pay == "" {
			pay = "—"
		}
		fmt.Fprintf(&b, "\n%s %s • %s\n   %d items • %s • %s\n",
			emoji, o.Reference, o.CreatedAt.Format("Jan 2"),
			o.ItemCount, h.price(o.Total), pay)
	}
	h.sendText(ctx, userID, sc, strings.TrimRight(b.String(), "\n"))
	sc.RecordAction("viewed order history")
	return sc, nil
}

func (h *Handlers) sendTextReply(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	message := args.String("message")
	if message == "" {
		message = "I'm here to help you order! Say \"menu\" to get started 😊"
	}
	h.sendText(ctx, userID, sc, message)
	return sc, nil
}
