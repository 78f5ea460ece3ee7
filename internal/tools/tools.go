// Package tools implements the named conversation operations. Each handler
// is a reducer over a cloned session context: it receives the user's current
// context, sends outbound messages through the Messenger as side effects,
// and returns the replacement context. Handlers never write the session
// store; the router persists the returned context exactly once per turn.
// The single exception is the courtesy session delete after a completed
// order, which is documented on processPayment.
package tools

import (
	"fmt"
	"math"
	"strings"

	"github.com/bhandaridiwash/newchatbot/internal/catalog"
	"github.com/bhandaridiwash/newchatbot/internal/chat"
	"github.com/bhandaridiwash/newchatbot/internal/order"
	"github.com/bhandaridiwash/newchatbot/internal/session"
	"github.com/bhandaridiwash/newchatbot/pkg/logx"
)

// Args carries tool arguments. Values originate from interactive-id
// dispatch, stage parsers, or the oracle (post-validation).
type Args map[string]any

// String reads a string argument, returning "" when absent or mistyped.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Int reads an integer argument. JSON numbers arrive as float64.
func (a Args) Int(key string) (int, bool) {
	switch n := a[key].(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// IntOr reads an integer argument with a default.
func (a Args) IntOr(key string, def int) int {
	if n, ok := a.Int(key); ok {
		return n
	}
	return def
}

// Location reads the structured location argument, if present.
func (a Args) Location() *chat.Location {
	loc, _ := a["location"].(*chat.Location)
	return loc
}

// Config carries the restaurant-level settings handlers render into
// messages.
type Config struct {
	Restaurant     string
	Currency       string
	DepositPercent float64
}

// Handlers binds the tool implementations to their collaborators.
type Handlers struct {
	cfg       Config
	messenger chat.Messenger
	catalog   catalog.Gateway
	orders    order.Gateway
	// sessions is used only for the post-order courtesy delete.
	sessions session.Store
	logger   *logx.Logger
}

// NewHandlers wires the tool implementations.
func NewHandlers(cfg Config, m chat.Messenger, cat catalog.Gateway, ord order.Gateway, sess session.Store) *Handlers {
	return &Handlers{
		cfg:       cfg,
		messenger: m,
		catalog:   cat,
		orders:    ord,
		sessions:  sess,
		logger:    logx.NewLogger("tools"),
	}
}

// WhatsApp interactive-message field limits.
const (
	rowTitleLimit = 24
	rowDescLimit  = 72
	maxListRows   = 10
)

// truncate caps s at limit characters (not bytes; titles carry emoji).
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

var categoryEmoji = map[string]string{
	"momos":     "🥟",
	"noodles":   "🍜",
	"rice":      "🍚",
	"beverages": "🥤",
	"desserts":  "🍰",
}

func emojiFor(category string) string {
	if e, ok := categoryEmoji[strings.ToLower(category)]; ok {
		return e
	}
	return "🍽️"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (h *Handlers) price(amount float64) string {
	return fmt.Sprintf("%s %.0f", h.cfg.Currency, amount)
}

func (h *Handlers) depositFor(cart session.Cart) float64 {
	return math.Ceil(cart.Total() * h.cfg.DepositPercent)
}

func cartSummary(cart session.Cart, currency string) string {
	var b strings.Builder
	for _, it := range cart {
		fmt.Fprintf(&b, "• %s × %d — %s %.0f\n", it.Name, it.Quantity, currency, it.Price*float64(it.Quantity))
	}
	fmt.Fprintf(&b, "\nTotal: %s %.0f (%d items)", currency, cart.Total(), cart.Count())
	return b.String()
}
