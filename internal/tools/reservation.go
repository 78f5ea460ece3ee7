package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/bhandaridiwash/newchatbot/internal/chat"
	"github.com/bhandaridiwash/newchatbot/internal/session"
)

func (h *Handlers) collectPartySize(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	size, err := ParsePartySize(args.String("text"))
	if err != nil {
		h.sendText(ctx, userID, sc, "Please tell me the number of people as a digit, like 4 😊")
		return sc, nil
	}

	sc.NumberOfPeople = &size
	sc.Stage = session.StageCollectingArrivalTime
	sc.RecordAction(fmt.Sprintf("party of %d", size))
	h.sendText(ctx, userID, sc, fmt.Sprintf("Perfect, a table for %d! 🪑 What time will you arrive? (e.g. 7pm or 19:30)", size))
	return sc, nil
}

// collectArrivalTime completes reservation data collection and commits the
// staged dine_in service type. A time that fails to parse is recorded as nil
// with a warning rather than blocking the reservation.
func (h *Handlers) collectArrivalTime(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	text := args.String("text")
	when, err := ParseArrivalTime(text, time.Now())
	if err != nil {
		h.logger.Warn("arrival time for %s: %v, proceeding without a time", userID, err)
		sc.DineTime = nil
	} else {
		sc.DineTime = &when
	}
	sc.ArrivalText = text
	sc.ServiceType = session.ServiceDineIn
	sc.DepositAmount = h.depositFor(sc.Cart)
	sc.Stage = session.StageConfirmingDeposit
	sc.RecordAction("arrival time collected")

	timeLine := "not set"
	if sc.DineTime != nil {
		timeLine = sc.DineTime.Format("3:04 PM")
	}
	body := fmt.Sprintf(
		"🪑 Reservation Summary\n\n• Party size: %d\n• Arrival: %s\n• Order total: %s\n\nA refundable deposit of %s (%.0f%%) holds your table. Proceed?",
		*sc.NumberOfPeople, timeLine, h.price(sc.Cart.Total()),
		h.price(sc.DepositAmount), h.cfg.DepositPercent*100)

	msg := chat.ButtonMessage{
		Body: body,
		Buttons: []chat.Button{
			{ID: "confirm_deposit", Title: "Confirm Deposit ✅"},
			{ID: "cancel_order", Title: "Cancel ❌"},
		},
	}
	if err := h.messenger.SendButtons(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send deposit prompt to %s: %v", userID, err)
	}
	return sc, nil
}

func (h *Handlers) confirmReservationDeposit(ctx context.Context, _ Args, userID string, sc session.Context) (session.Context, error) {
	if sc.NumberOfPeople == nil {
		h.sendText(ctx, userID, sc, "Let's set up your table first — how many people? 🪑")
		sc.Stage = session.StageCollectingPartySize
		return sc, nil
	}

	r, err := h.orders.CreateReservation(ctx, userID, sc.Platform, *sc.NumberOfPeople, sc.DineTime)
	if err != nil {
		return sc, h.sendRetry(ctx, userID, sc, fmt.Errorf("create reservation: %w", err))
	}
	h.logger.Info("reservation #%d pending for %s", r.ID, userID)
	sc.RecordAction("reservation created")
	return h.showDineInPaymentOptions(ctx, nil, userID, sc)
}
