package tools

import (
	"context"
	"fmt"

	"github.com/bhandaridiwash/newchatbot/internal/chat"
	"github.com/bhandaridiwash/newchatbot/internal/order"
	"github.com/bhandaridiwash/newchatbot/internal/session"
)

func (h *Handlers) showPaymentOptions(ctx context.Context, _ Args, userID string, sc session.Context) (session.Context, error) {
	msg := chat.ButtonMessage{
		Body: fmt.Sprintf("Almost there! Your total is %s. How would you like to pay? 💳", h.price(sc.Cart.Total())),
		Buttons: []chat.Button{
			{ID: "pay_online", Title: "Pay Online 💳"},
			{ID: "pay_cod", Title: "Cash on Delivery 💵"},
		},
	}
	if err := h.messenger.SendButtons(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send payment options to %s: %v", userID, err)
	}
	sc.Stage = session.StageSelectingPayment
	return sc, nil
}

func (h *Handlers) showDineInPaymentOptions(ctx context.Context, _ Args, userID string, sc session.Context) (session.Context, error) {
	body := fmt.Sprintf("Your total is %s. How would you like to pay? 💳", h.price(sc.Cart.Total()))
	if sc.DepositAmount > 0 {
		body = fmt.Sprintf("Your total is %s (deposit %s). How would you like to pay? 💳",
			h.price(sc.Cart.Total()), h.price(sc.DepositAmount))
	}
	msg := chat.ButtonMessage{
		Body: body,
		Buttons: []chat.Button{
			{ID: "pay_online", Title: "Pay Online 💳"},
			{ID: "pay_cash_counter", Title: "Cash at Counter 💵"},
		},
	}
	if err := h.messenger.SendButtons(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send payment options to %s: %v", userID, err)
	}
	sc.Stage = session.StageSelectingPayment
	return sc, nil
}

// processPayment is the single point where an order row comes into
// existence: carts that never reach this handler leave no trace in the
// orders table. On success the transient order state is reset and the
// session row is deleted as a courtesy cleanup; the router skips its usual
// persist for the completed stage.
func (h *Handlers) processPayment(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	method := args.String("method")
	switch method {
	case session.PayOnline, session.PayCash, session.PayCashCounter:
	default:
		h.sendText(ctx, userID, sc, "Please choose how to pay: online 💳 or cash 💵")
		return sc, nil
	}

	cart := sc.Cart
	if sc.PendingOrder != nil && len(sc.PendingOrder.Items) > 0 {
		cart = sc.PendingOrder.Items
	}
	if len(cart) == 0 {
		h.sendText(ctx, userID, sc, "Your cart is empty! Say \"menu\" to start ordering 🍽️")
		return sc, nil
	}

	o, err := h.orders.FinalizeOrderFromCart(ctx, userID, cart, order.FinalizeOptions{
		ServiceType:     sc.ServiceType,
		DeliveryAddress: sc.DeliveryAddress,
		PaymentMethod:   method,
		Platform:        sc.Platform,
	})
	if err != nil {
		return sc, h.sendRetry(ctx, userID, sc, fmt.Errorf("finalize order: %w", err))
	}

	if method == session.PayOnline {
		h.sendOnlineInstructions(ctx, userID, sc, o)
	}
	h.sendText(ctx, userID, sc, h.confirmationText(o, method, sc.DepositAmount))

	sc.ClearOrderState()
	sc.PaymentMethod = ""
	sc.Stage = session.StageOrderComplete
	sc.RecordAction("order " + o.Reference + " placed")

	// Courtesy cleanup: a completed order ends the conversation, so the
	// persisted row is removed. Failure is logged, never fatal.
	if err := h.sessions.Delete(ctx, userID); err != nil {
		h.logger.Warn("delete session for %s after order: %v", userID, err)
	}
	return sc, nil
}

func (h *Handlers) sendOnlineInstructions(ctx context.Context, userID string, sc session.Context, o order.Order) {
	amount := o.Total
	text := fmt.Sprintf(
		"💳 Online Payment\n\nPlease send %s to any of:\n• eSewa: 98XXXXXXXX\n• Khalti: 98XXXXXXXX\n• Bank: %s, AC 0123456789\n\nUse %s as the payment remark. We'll verify and confirm your order!",
		h.price(amount), h.cfg.Restaurant, o.Reference)
	h.sendText(ctx, userID, sc, text)
}

func (h *Handlers) confirmationText(o order.Order, method string, deposit float64) string {
	payLine := map[string]string{
		session.PayOnline:      "Online (pending verification)",
		session.PayCash:        "Cash on delivery",
		session.PayCashCounter: "Cash at counter",
	}[method]

	text := fmt.Sprintf("🎉 Order placed!\n\n• Reference: %s\n• Items: %d\n• Total: %s\n• Payment: %s",
		o.Reference, o.ItemCount, h.price(o.Total), payLine)
	if deposit > 0 {
		text += fmt.Sprintf("\n• Table deposit: %s (refundable)", h.price(deposit))
	}
	text += "\n\nThank you for ordering! 🙏"
	return text
}
