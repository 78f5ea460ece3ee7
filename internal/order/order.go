// Package order provides write access to orders and reservations. Order
// lifecycle beyond creation (staff confirmation, preparation, delivery) is
// out-of-band and not part of this core.
package order

import (
	"context"
	"time"

	"github.com/bhandaridiwash/newchatbot/internal/session"
)

// Order statuses.
const (
	StatusCreated   = "created"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusRejected  = "rejected"
)

// Reservation statuses.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Line is one order line item.
type Line struct {
	FoodID    int     `json:"foodId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Order is a persisted order row.
type Order struct {
	ID              int       `json:"id"`
	Reference       string    `json:"reference"`
	CustomerID      string    `json:"customerId"`
	Platform        string    `json:"platform"`
	Status          string    `json:"status"`
	ServiceType     string    `json:"serviceType"`
	DeliveryAddress string    `json:"deliveryAddress,omitempty"`
	PaymentMethod   string    `json:"paymentMethod,omitempty"`
	PaymentVerified bool      `json:"paymentVerified"`
	Total           float64   `json:"total"`
	ItemCount       int       `json:"itemCount"`
	Lines           []Line    `json:"lines,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Reservation is a persisted dine-in reservation.
type Reservation struct {
	ID         int        `json:"id"`
	CustomerID string     `json:"customerId"`
	Platform   string     `json:"platform"`
	TableID    *int       `json:"tableId,omitempty"`
	PartySize  int        `json:"partySize"`
	DineTime   *time.Time `json:"dineTime,omitempty"`
	Status     string     `json:"status"`
}

// FinalizeOptions carries the order-in-progress fields gathered during the
// conversation.
type FinalizeOptions struct {
	ServiceType     string
	DeliveryAddress string
	PaymentMethod   string
	Platform        string
}

// Gateway is the order persistence contract. Implementations own their own
// transactionality; the orchestrator treats each call as atomic.
type Gateway interface {
	// FinalizeOrderFromCart creates an order with its line items from the
	// validated cart in one shot. Called only at payment-selection time:
	// carts that never reach payment must leave no order rows behind.
	FinalizeOrderFromCart(ctx context.Context, userID string, cart session.Cart, opts FinalizeOptions) (Order, error)
	// SelectPayment records the chosen payment method on an order.
	SelectPayment(ctx context.Context, orderID int, method string) error
	// UpdateServiceType updates the service type of an existing order.
	UpdateServiceType(ctx context.Context, orderID int, serviceType string) error
	// UpdateDeliveryAddress updates the delivery address of an existing
	// order.
	UpdateDeliveryAddress(ctx context.Context, orderID int, address string) error
	// CreateReservation records a pending dine-in reservation. A nil
	// dineTime is accepted (see the arrival-time soft-failure policy).
	CreateReservation(ctx context.Context, userID, platform string, partySize int, dineTime *time.Time) (Reservation, error)
	// OrderHistory returns the user's most recent orders, newest first.
	OrderHistory(ctx context.Context, userID string, limit int) ([]Order, error)
}
