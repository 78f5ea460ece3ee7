package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/bhandaridiwash/newchatbot/internal/session"
)

// Handler is one named conversation operation.
type Handler func(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error)

// Tool handler names. The oracle-facing subset mirrors the oracle's tool
// catalog; the rest are reachable only through interactive-id dispatch and
// stage parsers.
const (
	ShowWelcomeMessage        = "show_welcome_message"
	ShowFoodMenu              = "show_food_menu"
	ShowCategoryItems         = "show_category_items"
	AddToCart                 = "add_to_cart"
	AddItemByName             = "add_item_by_name"
	AddMultipleItems          = "add_multiple_items"
	RecommendFood             = "recommend_food"
	ShowCartOptions           = "show_cart_options"
	ConfirmOrder              = "confirm_order"
	SelectServiceType         = "select_service_type"
	HandleLocationMethod      = "handle_location_method"
	ProvideLocation           = "provide_location"
	CollectPartySize          = "collect_party_size"
	CollectArrivalTime        = "collect_arrival_time"
	ConfirmReservationDeposit = "confirm_reservation_deposit"
	ShowPaymentOptions        = "show_payment_options"
	ShowDineInPaymentOptions  = "show_dine_in_payment_options"
	ProcessOrderResponse      = "process_order_response"
	ProcessPayment            = "process_payment"
	CancelOrder               = "cancel_order"
	ConfirmCancel             = "confirm_cancel"
	ShowOrderHistory          = "show_order_history"
	SendTextReply             = "send_text_reply"
)

// Registry resolves handler names to implementations. The set is sealed at
// construction; duplicate registration is a programming error.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds the full handler table.
func NewRegistry(h *Handlers) *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	r.register(ShowWelcomeMessage, h.showWelcomeMessage)
	r.register(ShowFoodMenu, h.showFoodMenu)
	r.register(ShowCategoryItems, h.showCategoryItems)
	r.register(AddToCart, h.addToCart)
	r.register(AddItemByName, h.addItemByName)
	r.register(AddMultipleItems, h.addMultipleItems)
	r.register(RecommendFood, h.recommendFood)
	r.register(ShowCartOptions, h.showCartOptions)
	r.register(ConfirmOrder, h.confirmOrder)
	r.register(SelectServiceType, h.selectServiceType)
	r.register(HandleLocationMethod, h.handleLocationMethod)
	r.register(ProvideLocation, h.provideLocation)
	r.register(CollectPartySize, h.collectPartySize)
	r.register(CollectArrivalTime, h.collectArrivalTime)
	r.register(ConfirmReservationDeposit, h.confirmReservationDeposit)
	r.register(ShowPaymentOptions, h.showPaymentOptions)
	r.register(ShowDineInPaymentOptions, h.showDineInPaymentOptions)
	r.register(ProcessOrderResponse, h.processOrderResponse)
	r.register(ProcessPayment, h.processPayment)
	r.register(CancelOrder, h.cancelOrder)
	r.register(ConfirmCancel, h.confirmCancel)
	r.register(ShowOrderHistory, h.showOrderHistory)
	r.register(SendTextReply, h.sendTextReply)
	return r
}

func (r *Registry) register(name string, handler Handler) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("tools: handler %q registered twice", name))
	}
	r.handlers[name] = handler
}

// Lookup resolves a handler by name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names lists the registered handler names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
