package session

import "fmt"

// ErrInvalidTransition indicates a stage jump outside the transition table.
var ErrInvalidTransition = fmt.Errorf("invalid stage transition")

// menuStages can be re-entered from anywhere: "menu" is the universal
// recovery word, so every stage may transition back into browsing.
var menuStages = []Stage{
	StageInitial, StageViewingMenu, StageViewingItems,
	StageViewingRecommendations, StageCartOptions,
}

// validTransitions is the checkout/reservation state machine. Browsing
// stages are deliberately permissive; the structured flows (reservation,
// location, payment) are narrow.
var validTransitions = map[Stage][]Stage{
	StageInitial:                {StageQuickCartAction, StageSelectingItem},
	StageViewingMenu:            {StageQuickCartAction, StageSelectingItem},
	StageViewingItems:           {StageQuickCartAction, StageSelectingItem, StageConfirmingOrder},
	StageViewingRecommendations: {StageQuickCartAction, StageSelectingItem},
	StageSelectingItem:          {StageQuickCartAction},
	StageQuickCartAction:        {StageCartOptions, StageConfirmingOrder, StageSelectingItem},
	StageCartOptions:            {StageConfirmingOrder, StageQuickCartAction, StageConfirmingCancel},
	StageConfirmingOrder:        {StageSelectingService, StageConfirmingCancel, StageOrderComplete},
	StageConfirmingCancel:       {StageInitial, StageCartOptions, StageConfirmingOrder},
	// Pickup skips straight to payment, and the service branch may be
	// switched at any point before payment, so the reservation and location
	// stages cross over into each other.
	StageSelectingService:       {StageCollectingPartySize, StageSelectingLocation, StageSelectingPayment},
	StageCollectingPartySize:    {StageCollectingArrivalTime, StageSelectingLocation, StageSelectingPayment},
	StageCollectingArrivalTime:  {StageConfirmingDeposit, StageSelectingLocation, StageSelectingPayment},
	StageConfirmingDeposit:      {StageSelectingPayment, StageConfirmingCancel, StageSelectingLocation, StageCollectingPartySize},
	StageSelectingLocation:      {StageProvidingLocation, StageCollectingPartySize, StageSelectingPayment},
	StageProvidingLocation:      {StageSelectingPayment, StageProvidingLocation, StageCollectingPartySize},
	StageSelectingPayment:       {StageOrderComplete, StageCollectingPartySize, StageSelectingLocation},
	StageOrderComplete:          {},
}

// CanTransition reports whether moving from one stage to another is part of
// the modeled flow. Transitions into any browsing stage are always allowed.
func CanTransition(from, to Stage) bool {
	if from == to {
		return true
	}
	for _, s := range menuStages {
		if to == s {
			return true
		}
	}
	for _, s := range validTransitions[from] {
		if to == s {
			return true
		}
	}
	return false
}
