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

func (h *Handlers) addToCart(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	foodID, ok := args.Int("food_id")
	if !ok || foodID <= 0 {
		h.sendText(ctx, userID, sc, "I couldn't tell which item you meant. Say \"menu\" to browse! 🍽️")
		return sc, nil
	}
	quantity := args.IntOr("quantity", 1)
	if quantity <= 0 {
		quantity = 1
	}

	item, err := h.catalog.ByID(ctx, foodID)
	if errors.Is(err, catalog.ErrNotFound) {
		h.sendText(ctx, userID, sc, "Sorry, that item isn't on the menu anymore. Say \"menu\" to see what's available! 🙏")
		return sc, nil
	}
	if err != nil {
		return sc, h.sendRetry(ctx, userID, sc, fmt.Errorf("lookup food %d: %w", foodID, err))
	}

	return h.mergeAndSummarize(ctx, userID, sc, item, quantity)
}

func (h *Handlers) addItemByName(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	name := strings.TrimSpace(args.String("name"))
	quantity := args.IntOr("quantity", 1)
	if quantity <= 0 {
		quantity = 1
	}

	// Anaphora: "add it" means the most recent recommendation.
	if isAnaphor(name) {
		if len(sc.Recommendations) == 0 {
			h.sendText(ctx, userID, sc, "I'm not sure which item you mean. Could you tell me the name? 😊")
			return sc, nil
		}
		rec := sc.Recommendations[0]
		item, err := h.catalog.ByID(ctx, rec.FoodID)
		if err != nil {
			return sc, h.sendRetry(ctx, userID, sc, fmt.Errorf("lookup recommended %d: %w", rec.FoodID, err))
		}
		return h.mergeAndSummarize(ctx, userID, sc, item, quantity)
	}

	matches, err := h.catalog.ByName(ctx, name)
	if err != nil {
		return sc, h.sendRetry(ctx, userID, sc, fmt.Errorf("search %q: %w", name, err))
	}

	switch len(matches) {
	case 0:
		// A single cached recommendation is a strong hint at what the user
		// meant.
		if len(sc.Recommendations) == 1 {
			item, err := h.catalog.ByID(ctx, sc.Recommendations[0].FoodID)
			if err == nil {
				return h.mergeAndSummarize(ctx, userID, sc, item, quantity)
			}
		}
		h.sendText(ctx, userID, sc, fmt.Sprintf("Sorry, I couldn't find %q on our menu. Say \"menu\" to browse! 🙏", name))
		return sc, nil
	case 1:
		return h.mergeAndSummarize(ctx, userID, sc, matches[0], quantity)
	default:
		return h.disambiguate(ctx, userID, sc, name, matches)
	}
}

func (h *Handlers) addMultipleItems(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	raw, _ := args["items"].([]any)
	var added, missed []string

	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		sub := Args(m)
		name := strings.TrimSpace(sub.String("name"))
		quantity := sub.IntOr("quantity", 1)
		if quantity <= 0 {
			quantity = 1
		}

		matches, err := h.catalog.ByName(ctx, name)
		if err != nil {
			h.logger.Warn("search %q for %s: %v", name, userID, err)
			missed = append(missed, name)
			continue
		}
		if len(matches) == 0 {
			missed = append(missed, name)
			continue
		}
		// Batch adds take the best match rather than stopping the whole
		// order to disambiguate one line.
		item := matches[0]
		sc.Cart = sc.Cart.Merge(session.CartItem{
			FoodID: item.ID, Name: item.Name, Price: item.Price, Quantity: quantity,
		})
		sc.LastAddedItem = item.Name
		added = append(added, fmt.Sprintf("%s × %d", item.Name, quantity))
	}

	var b strings.Builder
	if len(added) > 0 {
		b.WriteString("Added to your cart ✅\n")
		for _, a := range added {
			fmt.Fprintf(&b, "• %s\n", a)
		}
	}
	if len(missed) > 0 {
		b.WriteString("\nCouldn't find:\n")
		for _, m := range missed {
			fmt.Fprintf(&b, "• %s\n", m)
		}
	}
	if len(added) == 0 && len(missed) == 0 {
		h.sendText(ctx, userID, sc, "Which dishes would you like to add? 🥟")
		return sc, nil
	}
	if len(added) > 0 {
		fmt.Fprintf(&b, "\nCart total: %s (%d items)", h.price(sc.Cart.Total()), sc.Cart.Count())
	}
	h.sendText(ctx, userID, sc, strings.TrimSpace(b.String()))

	if len(added) > 0 {
		h.sendQuickCartActions(ctx, userID, sc)
		sc.Stage = session.StageQuickCartAction
	}
	sc.RecordAction(fmt.Sprintf("batch add: %d found, %d missed", len(added), len(missed)))
	return sc, nil
}

func (h *Handlers) showCartOptions(ctx context.Context, _ Args, userID string, sc session.Context) (session.Context, error) {
	if len(sc.Cart) == 0 {
		h.sendText(ctx, userID, sc, "Your cart is empty! Say \"menu\" to start adding some delicious food 🍽️")
		return sc, nil
	}

	msg := chat.ButtonMessage{
		Header: "🛒 Your Cart",
		Body:   cartSummary(sc.Cart, h.cfg.Currency),
		Buttons: []chat.Button{
			{ID: "proceed_checkout", Title: "Checkout ✅"},
			{ID: "browse_menu", Title: "Add More 🍽️"},
			{ID: "cancel_order", Title: "Cancel ❌"},
		},
	}
	if err := h.messenger.SendButtons(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send cart options to %s: %v", userID, err)
	}
	sc.Stage = session.StageCartOptions
	sc.RecordAction("viewed cart")
	return sc, nil
}

// mergeAndSummarize folds the item into the cart and sends the quick-action
// follow-up.
func (h *Handlers) mergeAndSummarize(ctx context.Context, userID string, sc session.Context, item catalog.Item, quantity int) (session.Context, error) {
	sc.Cart = sc.Cart.Merge(session.CartItem{
		FoodID: item.ID, Name: item.Name, Price: item.Price, Quantity: quantity,
	})
	sc.LastAddedItem = item.Name

	h.sendText(ctx, userID, sc, fmt.Sprintf("%s × %d added to your cart! 🛒\n\nCart total: %s (%d items)",
		item.Name, quantity, h.price(sc.Cart.Total()), sc.Cart.Count()))
	h.sendQuickCartActions(ctx, userID, sc)

	sc.Stage = session.StageQuickCartAction
	sc.RecordAction("added " + item.Name)
	return sc, nil
}

func (h *Handlers) sendQuickCartActions(ctx context.Context, userID string, sc session.Context) {
	moreID := "view_all_categories"
	moreTitle := "Other Categories 📋"
	if sc.CurrentCategory != "" {
		moreID = "more_" + sc.CurrentCategory
		moreTitle = truncate("More "+titleCase(sc.CurrentCategory)+" "+emojiFor(sc.CurrentCategory), rowTitleLimit)
	}
	msg := chat.ButtonMessage{
		Body: "What next?",
		Buttons: []chat.Button{
			{ID: moreID, Title: moreTitle},
			{ID: "view_all_categories", Title: "All Categories 🍽️"},
			{ID: "proceed_checkout", Title: "Checkout 🛒"},
		},
	}
	if sc.CurrentCategory == "" {
		msg.Buttons = msg.Buttons[1:]
	}
	if err := h.messenger.SendButtons(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send quick actions to %s: %v", userID, err)
	}
}

func (h *Handlers) disambiguate(ctx context.Context, userID string, sc session.Context, query string, matches []catalog.Item) (session.Context, error) {
	rows := make([]chat.Row, 0, len(matches))
	for _, it := range matches {
		if len(rows) == maxListRows {
			break
		}
		rows = append(rows, chat.Row{
			ID:          fmt.Sprintf("add_%d", it.ID),
			Title:       truncate(it.Name, rowTitleLimit),
			Description: truncate(fmt.Sprintf("%s • %s", h.price(it.Price), it.Description), rowDescLimit),
		})
	}
	msg := chat.ListMessage{
		Body:       fmt.Sprintf("I found a few dishes matching %q — which one did you mean?", query),
		ButtonText: "Pick One",
		Sections:   []chat.Section{{Title: "Matches", Rows: rows}},
	}
	if err := h.messenger.SendList(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send disambiguation to %s: %v", userID, err)
	}
	sc.Stage = session.StageSelectingItem
	sc.RecordAction("disambiguating " + query)
	return sc, nil
}

func isAnaphor(name string) bool {
	switch strings.ToLower(name) {
	case "it", "this", "that", "the first one", "first one":
		return true
	}
	return false
}
