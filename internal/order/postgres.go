package order

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bhandaridiwash/newchatbot/internal/session"
	"github.com/bhandaridiwash/newchatbot/pkg/logx"
)

// Conversation payment methods map onto the database's payment_method
// constraint values.
var dbPaymentMethods = map[string]string{
	session.PayOnline:      "esewa",
	session.PayCash:        "cash",
	session.PayCashCounter: "cash",
}

func toDBPayment(method string) string {
	if m, ok := dbPaymentMethods[method]; ok {
		return m
	}
	return method
}

// PostgresGateway persists orders and reservations in the shared restaurant
// database (orders, order_items, reservations tables).
type PostgresGateway struct {
	db     *sql.DB
	logger *logx.Logger
}

// NewPostgresGateway wraps an open database handle.
func NewPostgresGateway(db *sql.DB) *PostgresGateway {
	return &PostgresGateway{db: db, logger: logx.NewLogger("order-pg")}
}

func (g *PostgresGateway) FinalizeOrderFromCart(ctx context.Context, userID string, cart session.Cart, opts FinalizeOptions) (Order, error) {
	if len(cart) == 0 {
		return Order{}, fmt.Errorf("finalize order for %s: empty cart", userID)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	reference := "ORD-" + strings.ToUpper(uuid.NewString()[:8])
	o := Order{
		Reference:       reference,
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

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (reference, customer_id, platform, status, service_type, delivery_address, payment_method, payment_verified, total, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), false, $8, $9)
		RETURNING id`,
		o.Reference, o.CustomerID, o.Platform, o.Status, o.ServiceType,
		o.DeliveryAddress, toDBPayment(o.PaymentMethod), o.Total, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return Order{}, fmt.Errorf("insert order for %s: %w", userID, err)
	}

	for _, it := range cart {
		line := Line{FoodID: it.FoodID, Quantity: it.Quantity, UnitPrice: it.Price}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, food_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`,
			o.ID, line.FoodID, line.Quantity, line.UnitPrice,
		); err != nil {
			return Order{}, fmt.Errorf("insert order item %d: %w", line.FoodID, err)
		}
		o.Lines = append(o.Lines, line)
	}

	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("commit order %s: %w", o.Reference, err)
	}
	g.logger.Info("created order %s (#%d) for %s: %d items, total %.2f",
		o.Reference, o.ID, userID, o.ItemCount, o.Total)
	return o, nil
}

func (g *PostgresGateway) SelectPayment(ctx context.Context, orderID int, method string) error {
	return g.updateColumn(ctx, orderID, "payment_method", toDBPayment(method))
}

func (g *PostgresGateway) UpdateServiceType(ctx context.Context, orderID int, serviceType string) error {
	return g.updateColumn(ctx, orderID, "service_type", serviceType)
}

func (g *PostgresGateway) UpdateDeliveryAddress(ctx context.Context, orderID int, address string) error {
	return g.updateColumn(ctx, orderID, "delivery_address", address)
}

func (g *PostgresGateway) updateColumn(ctx context.Context, orderID int, column, value string) error {
	res, err := g.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE orders SET %s = $1 WHERE id = $2`, column), value, orderID)
	if err != nil {
		return fmt.Errorf("update order %d %s: %w", orderID, column, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update order %d %s: no such order", orderID, column)
	}
	return nil
}

func (g *PostgresGateway) CreateReservation(ctx context.Context, userID, platform string, partySize int, dineTime *time.Time) (Reservation, error) {
	if partySize <= 0 {
		return Reservation{}, fmt.Errorf("create reservation for %s: party size must be positive", userID)
	}

	r := Reservation{
		CustomerID: userID,
		Platform:   platform,
		PartySize:  partySize,
		DineTime:   dineTime,
		Status:     ReservationPending,
	}
	err := g.db.QueryRowContext(ctx, `
		INSERT INTO reservations (customer_id, platform, party_size, dine_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		r.CustomerID, r.Platform, r.PartySize, r.DineTime, r.Status,
	).Scan(&r.ID)
	if err != nil {
		return Reservation{}, fmt.Errorf("insert reservation for %s: %w", userID, err)
	}
	g.logger.Info("created reservation #%d for %s: party of %d", r.ID, userID, partySize)
	return r, nil
}

func (g *PostgresGateway) OrderHistory(ctx context.Context, userID string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := g.db.QueryContext(ctx, `
		SELECT id, reference, customer_id, platform, status, service_type,
		       COALESCE(delivery_address, ''), COALESCE(payment_method, ''),
		       payment_verified, total, created_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query order history for %s: %w", userID, err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Reference, &o.CustomerID, &o.Platform,
			&o.Status, &o.ServiceType, &o.DeliveryAddress, &o.PaymentMethod,
			&o.PaymentVerified, &o.Total, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.ItemCount, err = g.itemCount(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (g *PostgresGateway) itemCount(ctx context.Context, orderID int) (int, error) {
	var n int
	err := g.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM order_items WHERE order_id = $1`, orderID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items for order %d: %w", orderID, err)
	}
	return n, nil
}
