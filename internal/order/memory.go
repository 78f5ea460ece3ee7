package order

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bhandaridiwash/newchatbot/internal/session"
)

// MemoryGateway keeps orders and reservations in memory. It backs the local
// chat harness and tests.
type MemoryGateway struct {
	mu           sync.Mutex
	nextOrderID  int
	nextResvID   int
	orders       []Order
	reservations []Reservation
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{nextOrderID: 1, nextResvID: 1}
}

func (g *MemoryGateway) FinalizeOrderFromCart(_ context.Context, userID string, cart session.Cart, opts FinalizeOptions) (Order, error) {
	if len(cart) == 0 {
		return Order{}, fmt.Errorf("finalize order for %s: empty cart", userID)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	o := Order{
		ID:              g.nextOrderID,
		Reference:       "ORD-" + strings.ToUpper(uuid.NewString()[:8]),
		CustomerID:      userID,
		Platform:        opts.Platform,
		Status:          StatusCreated,
		ServiceType:     opts.ServiceType,
		DeliveryAddress: opts.DeliveryAddress,
		PaymentMethod:   opts.PaymentMethod,
		Total:           cart.Total(),
		ItemCount:       cart.Count(),
		CreatedAt:       time.Now().UTC(),
	}
	for _, it := range cart {
		o.Lines = append(o.Lines, Line{FoodID: it.FoodID, Quantity: it.Quantity, UnitPrice: it.Price})
	}
	g.nextOrderID++
	g.orders = append(g.orders, o)
	return o, nil
}

func (g *MemoryGateway) SelectPayment(_ context.Context, orderID int, method string) error {
	return g.update(orderID, func(o *Order) { o.PaymentMethod = method })
}

func (g *MemoryGateway) UpdateServiceType(_ context.Context, orderID int, serviceType string) error {
	return g.update(orderID, func(o *Order) { o.ServiceType = serviceType })
}

func (g *MemoryGateway) UpdateDeliveryAddress(_ context.Context, orderID int, address string) error {
	return g.update(orderID, func(o *Order) { o.DeliveryAddress = address })
}

func (g *MemoryGateway) update(orderID int, fn func(*Order)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range g.orders {
		if g.orders[i].ID == orderID {
			fn(&g.orders[i])
			return nil
		}
	}
	return fmt.Errorf("update order %d: no such order", orderID)
}

func (g *MemoryGateway) CreateReservation(_ context.Context, userID, platform string, partySize int, dineTime *time.Time) (Reservation, error) {
	if partySize <= 0 {
		return Reservation{}, fmt.Errorf("create reservation for %s: party size must be positive", userID)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	r := Reservation{
		ID:         g.nextResvID,
		CustomerID: userID,
		Platform:   platform,
		PartySize:  partySize,
		DineTime:   dineTime,
		Status:     ReservationPending,
	}
	g.nextResvID++
	g.reservations = append(g.reservations, r)
	return r, nil
}

func (g *MemoryGateway) OrderHistory(_ context.Context, userID string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 5
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var orders []Order
	for i := len(g.orders) - 1; i >= 0 && len(orders) < limit; i-- {
		if g.orders[i].CustomerID == userID {
			orders = append(orders, g.orders[i])
		}
	}
	return orders, nil
}

// Reservations returns a snapshot of all reservations, for tests.
func (g *MemoryGateway) Reservations() []Reservation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Reservation(nil), g.reservations...)
}
