package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bhandaridiwash/newchatbot/internal/catalog"
	"github.com/bhandaridiwash/newchatbot/internal/chat"
	"github.com/bhandaridiwash/newchatbot/internal/session"
)

// confirmOrder re-validates every cart line against the catalog before
// presenting the final total. Stale lines are stripped with a visible
// notice; an empty survivor set routes back to the menu.
func (h *Handlers) confirmOrder(ctx context.Context, _ Args, userID string, sc session.Context) (session.Context, error) {
	if len(sc.Cart) == 0 {
		h.sendText(ctx, userID, sc, "Your cart is empty! Say \"menu\" to start ordering 🍽️")
		return sc, nil
	}

	var validated session.Cart
	var dropped []string
	for _, line := range sc.Cart {
		item, err := h.catalog.ByID(ctx, line.FoodID)
		if errors.Is(err, catalog.ErrNotFound) {
			dropped = append(dropped, line.Name)
			continue
		}
		if err != nil {
			return sc, h.sendRetry(ctx, userID, sc, fmt.Errorf("validate cart line %d: %w", line.FoodID, err))
		}
		// Catalog price wins over the add-time snapshot.
		line.Price = item.Price
		line.Name = item.Name
		validated = append(validated, line)
	}

	if len(dropped) > 0 {
		h.sendText(ctx, userID, sc, fmt.Sprintf("Heads up — these items are no longer available and were removed: %s", strings.Join(dropped, ", ")))
	}
	if len(validated) == 0 {
		h.sendText(ctx, userID, sc, "None of your cart items are available anymore 😔 Let's pick something fresh!")
		sc.Cart = session.Cart{}
		return h.showFoodMenu(ctx, nil, userID, sc)
	}

	sc.Cart = validated
	sc.PendingOrder = &session.PendingOrder{
		Items: validated.Clone(),
		Total: validated.Total(),
	}

	details := fmt.Sprintf("📋 Order Summary\n\n%s\n\nShall I place this order?", cartSummary(validated, h.cfg.Currency))
	if err := h.messenger.SendOrderConfirmation(ctx, userID, sc.Platform, details); err != nil {
		h.logger.Warn("send order confirmation to %s: %v", userID, err)
	}
	sc.Stage = session.StageConfirmingOrder
	sc.RecordAction("confirming order")
	return sc, nil
}

// selectServiceType branches the checkout. Dine-in only stages the choice:
// the service type is committed later, together with the reservation fields
// it requires.
func (h *Handlers) selectServiceType(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	// Switching branches mid-checkout discards whatever the previous branch
	// collected (reservation fields, address, deposit).
	sc.ClearServiceState()

	switch args.String("service_type") {
	case session.ServiceDineIn:
		h.sendText(ctx, userID, sc, "Great, a table it is! 🪑 How many people should I reserve for?")
		sc.Stage = session.StageCollectingPartySize
		sc.RecordAction("chose dine-in")
		return sc, nil

	case session.ServiceDelivery:
		msg := chat.ButtonMessage{
			Body: "How would you like to share your delivery address? 🛵",
			Buttons: []chat.Button{
				{ID: "share_location", Title: "Share Location 📍"},
				{ID: "type_address", Title: "Type Address ⌨️"},
			},
		}
		if err := h.messenger.SendButtons(ctx, userID, sc.Platform, msg); err != nil {
			h.logger.Warn("send location method to %s: %v", userID, err)
		}
		sc.Stage = session.StageSelectingLocation
		sc.RecordAction("chose delivery")
		return sc, nil

	case session.ServicePickup:
		sc.ServiceType = session.ServicePickup
		sc.RecordAction("chose pickup")
		return h.showDineInPaymentOptions(ctx, nil, userID, sc)

	default:
		return h.askServiceType(ctx, userID, sc)
	}
}

func (h *Handlers) handleLocationMethod(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	switch args.String("method") {
	case "share_location":
		if err := h.messenger.SendLocationRequest(ctx, userID, sc.Platform, "Please share your location 📍"); err != nil {
			h.logger.Warn("send location request to %s: %v", userID, err)
		}
	default:
		h.sendText(ctx, userID, sc, "Please type your full delivery address ⌨️")
	}
	sc.Stage = session.StageProvidingLocation
	return sc, nil
}

// provideLocation accepts either a typed address or a platform location
// share. Committing the address also commits serviceType=delivery.
func (h *Handlers) provideLocation(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	address := strings.TrimSpace(args.String("address"))
	loc := args.Location()
	if address == "" && loc == nil {
		h.sendText(ctx, userID, sc, "I didn't catch your address. Please type it, or share your location 📍")
		return sc, nil
	}

	// Committing delivery also drops any staged reservation fields left by
	// an abandoned dine-in flow.
	sc.ClearServiceState()

	if loc != nil {
		sc.DeliveryLocation = loc
		if address == "" {
			address = loc.Address
		}
		if address == "" {
			address = fmt.Sprintf("%.6f,%.6f", loc.Latitude, loc.Longitude)
		}
	}
	sc.DeliveryAddress = address
	sc.ServiceType = session.ServiceDelivery
	sc.RecordAction("provided address")

	h.sendText(ctx, userID, sc, "Got it! Delivering to:\n📍 "+address)
	return h.showPaymentOptions(ctx, nil, userID, sc)
}

// processOrderResponse interprets a yes/no during the confirmation stages.
func (h *Handlers) processOrderResponse(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	yes := args.String("response") == "yes"

	if sc.Stage == session.StageConfirmingCancel {
		if yes {
			return h.confirmCancel(ctx, nil, userID, sc)
		}
		return h.showCartOptions(ctx, nil, userID, sc)
	}

	if !yes {
		return h.cancelOrder(ctx, nil, userID, sc)
	}
	return h.askServiceType(ctx, userID, sc)
}

// cancelOrder is the first step of the two-step cancellation: it only asks.
// State is destroyed by confirmCancel alone.
func (h *Handlers) cancelOrder(ctx context.Context, _ Args, userID string, sc session.Context) (session.Context, error) {
	msg := chat.ButtonMessage{
		Body: "Are you sure you want to cancel? Your cart will be emptied. 🗑️",
		Buttons: []chat.Button{
			{ID: "confirm_cancel", Title: "Yes, Cancel ❌"},
			{ID: "back_to_cart", Title: "Keep My Cart 🛒"},
		},
	}
	if err := h.messenger.SendButtons(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send cancel prompt to %s: %v", userID, err)
	}
	sc.Stage = session.StageConfirmingCancel
	sc.RecordAction("cancel requested")
	return sc, nil
}

func (h *Handlers) confirmCancel(ctx context.Context, _ Args, userID string, sc session.Context) (session.Context, error) {
	sc.ClearOrderState()
	sc.Stage = session.StageInitial
	sc.RecordAction("order cancelled")
	h.sendText(ctx, userID, sc, "Order cancelled and cart emptied. Say \"menu\" whenever you're hungry again! 🙏")
	return sc, nil
}

func (h *Handlers) askServiceType(ctx context.Context, userID string, sc session.Context) (session.Context, error) {
	msg := chat.ButtonMessage{
		Body: "How would you like your order? 😊",
		Buttons: []chat.Button{
			{ID: "service_dine_in", Title: "Dine In 🪑"},
			{ID: "service_delivery", Title: "Delivery 🛵"},
			{ID: "service_pickup", Title: "Pickup 🛍️"},
		},
	}
	if err := h.messenger.SendButtons(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send service options to %s: %v", userID, err)
	}
	sc.Stage = session.StageSelectingService
	return sc, nil
}
