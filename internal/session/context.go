// Package session holds the per-user conversational state: the context
// blob, the cart and the order-in-progress fields, plus the Store contract
// that persists one context per platform-qualified user id.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/bhandaridiwash/newchatbot/internal/chat"
)

// Stage marks which step of a multi-turn flow a user is in.
type Stage string

const (
	StageInitial                Stage = "initial"
	StageViewingMenu            Stage = "viewing_menu"
	StageViewingItems           Stage = "viewing_items"
	StageViewingRecommendations Stage = "viewing_recommendations"
	StageSelectingItem          Stage = "selecting_item"
	StageQuickCartAction        Stage = "quick_cart_action"
	StageCartOptions            Stage = "cart_options"
	StageConfirmingOrder        Stage = "confirming_order"
	StageConfirmingCancel       Stage = "confirming_cancel"
	StageSelectingService       Stage = "selecting_service"
	StageCollectingPartySize    Stage = "collecting_party_size"
	StageCollectingArrivalTime  Stage = "collecting_arrival_time"
	StageConfirmingDeposit      Stage = "confirming_deposit"
	StageSelectingLocation      Stage = "selecting_location_method"
	StageProvidingLocation      Stage = "providing_location"
	StageSelectingPayment       Stage = "selecting_payment"
	StageOrderComplete          Stage = "order_complete"
)

// Service types.
const (
	ServiceDineIn   = "dine_in"
	ServiceDelivery = "delivery"
	ServicePickup   = "pickup"
)

// Payment methods as chosen in conversation.
const (
	PayOnline      = "online"
	PayCash        = "cash"
	PayCashCounter = "cash_counter"
)

// ErrInvalidContext is wrapped by Context.Validate failures.
var ErrInvalidContext = errors.New("invalid session context")

// CartItem is one cart line. Price is a snapshot captured at add time and
// re-validated against the catalog at confirmation; the catalog stays the
// source of truth.
type CartItem struct {
	FoodID   int     `json:"foodId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Cart is an ordered sequence of cart lines. Totals are always derived,
// never cached.
type Cart []CartItem

// Total sums price*quantity over all lines.
func (c Cart) Total() float64 {
	var total float64
	for _, it := range c {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// Count sums quantities over all lines.
func (c Cart) Count() int {
	var n int
	for _, it := range c {
		n += it.Quantity
	}
	return n
}

// Clone returns an independent copy so handlers can mutate freely without
// sharing backing arrays with the persisted context.
func (c Cart) Clone() Cart {
	if c == nil {
		return nil
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Merge adds the item into the cart, folding into an existing line with the
// same food id or appending a new one. Returns the updated cart.
func (c Cart) Merge(item CartItem) Cart {
	for i := range c {
		if c[i].FoodID == item.FoodID {
			c[i].Quantity += item.Quantity
			return c
		}
	}
	return append(c, item)
}

// Recommendation is a catalog item remembered for anaphoric references
// ("add it", "add that").
type Recommendation struct {
	FoodID   int     `json:"foodId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// PendingOrder is the snapshot taken at confirmation time and held until
// payment resolves.
type PendingOrder struct {
	Items Cart    `json:"items"`
	Total float64 `json:"total"`
}

// Context is the persisted conversational state for one user.
type Context struct {
	Stage    Stage  `json:"stage"`
	Platform string `json:"platform,omitempty"`
	Cart     Cart   `json:"cart"`

	ServiceType      string         `json:"serviceType,omitempty"`
	DeliveryAddress  string         `json:"deliveryAddress,omitempty"`
	DeliveryLocation *chat.Location `json:"deliveryLocation,omitempty"`
	PaymentMethod    string         `json:"paymentMethod,omitempty"`

	// Reservation fields. Both must be set before ServiceType may be
	// committed to dine_in; see Validate.
	NumberOfPeople *int       `json:"numberOfPeople,omitempty"`
	DineTime       *time.Time `json:"dineTime,omitempty"`
	ArrivalText    string     `json:"arrivalText,omitempty"`
	DepositAmount  float64    `json:"depositAmount,omitempty"`

	PendingOrder    *PendingOrder    `json:"pendingOrder,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`

	CurrentCategory string   `json:"currentCategory,omitempty"`
	LastAddedItem   string   `json:"lastAddedItem,omitempty"`
	LastAction      string   `json:"lastAction,omitempty"`
	History         []string `json:"history,omitempty"`

	// UpdatedAt is stamped by the store on Put.
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// NewContext returns the default context for a fresh user.
func NewContext(platform string) Context {
	return Context{
		Stage:    StageInitial,
		Platform: platform,
		Cart:     Cart{},
		History:  []string{},
	}
}

// Clone deep-copies the context so a handler can be written as a reducer:
// it receives a private copy and returns the replacement value.
func (c Context) Clone() Context {
	out := c
	out.Cart = c.Cart.Clone()
	if c.NumberOfPeople != nil {
		n := *c.NumberOfPeople
		out.NumberOfPeople = &n
	}
	if c.DineTime != nil {
		t := *c.DineTime
		out.DineTime = &t
	}
	if c.DeliveryLocation != nil {
		loc := *c.DeliveryLocation
		out.DeliveryLocation = &loc
	}
	if c.PendingOrder != nil {
		out.PendingOrder = &PendingOrder{
			Items: c.PendingOrder.Items.Clone(),
			Total: c.PendingOrder.Total,
		}
	}
	if c.Recommendations != nil {
		out.Recommendations = append([]Recommendation(nil), c.Recommendations...)
	}
	if c.History != nil {
		out.History = append([]string(nil), c.History...)
	}
	return out
}

// ClearOrderState resets the transient order fields after an order completes
// (or a cancellation is confirmed). The stage is left to the caller.
func (c *Context) ClearOrderState() {
	c.Cart = Cart{}
	c.ClearServiceState()
	c.PaymentMethod = ""
	c.PendingOrder = nil
}

// ClearServiceState resets the service choice and every field its branch
// collected. The user may switch between dine-in, delivery and pickup until
// payment; without this reset the abandoned branch's fields would survive
// the switch and trip the cross-field check in Validate.
func (c *Context) ClearServiceState() {
	c.ServiceType = ""
	c.DeliveryAddress = ""
	c.DeliveryLocation = nil
	c.NumberOfPeople = nil
	c.DineTime = nil
	c.ArrivalText = ""
	c.DepositAmount = 0
}

// Validate enforces the cross-field service constraint on the context value
// itself rather than leaving it to the persistence layer:
//
//   - dine_in requires the party size to be known; the orchestrator stages
//     the ServiceType assignment until reservation data is collected.
//   - any other service type must not carry reservation fields.
//
// A dine_in context with a nil DineTime is tolerated: the arrival-time
// parser deliberately soft-fails to a nil time (see DESIGN.md), so only the
// party size is a hard requirement here.
func (c Context) Validate() error {
	switch c.ServiceType {
	case ServiceDineIn:
		if c.NumberOfPeople == nil {
			return fmt.Errorf("%w: dine_in requires numberOfPeople", ErrInvalidContext)
		}
		if *c.NumberOfPeople <= 0 {
			return fmt.Errorf("%w: numberOfPeople must be positive", ErrInvalidContext)
		}
	case "":
		// Unset service tolerates in-progress reservation fields: the
		// dine_in assignment is staged until collection completes.
	case ServiceDelivery, ServicePickup:
		if c.NumberOfPeople != nil || c.DineTime != nil {
			return fmt.Errorf("%w: reservation fields set without dine_in service", ErrInvalidContext)
		}
	default:
		return fmt.Errorf("%w: unknown service type %q", ErrInvalidContext, c.ServiceType)
	}

	for _, it := range c.Cart {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: cart line %q has non-positive quantity", ErrInvalidContext, it.Name)
		}
	}
	return nil
}

// RecordAction appends to the conversational trail, keeping a bounded
// history.
func (c *Context) RecordAction(action string) {
	const maxHistory = 50
	c.LastAction = action
	c.History = append(c.History, action)
	if len(c.History) > maxHistory {
		c.History = c.History[len(c.History)-maxHistory:]
	}
}
