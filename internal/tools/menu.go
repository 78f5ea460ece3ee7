package tools

import (
	"context"
	"fmt"

	"github.com/bhandaridiwash/newchatbot/internal/chat"
	"github.com/bhandaridiwash/newchatbot/internal/session"
)

func (h *Handlers) showWelcomeMessage(ctx context.Context, _ Args, userID string, sc session.Context) (session.Context, error) {
	msg := chat.ButtonMessage{
		Body: fmt.Sprintf("Namaste! 🙏 Welcome to %s!\n\nI can help you browse our menu, place an order, or reserve a table. What would you like to do?", h.cfg.Restaurant),
		Buttons: []chat.Button{
			{ID: "browse_menu", Title: "View Menu 🍽️"},
			{ID: "get_recommendations", Title: "Surprise Me ⭐"},
			{ID: "view_order_history", Title: "My Orders 📋"},
		},
	}
	if err := h.messenger.SendButtons(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send welcome to %s: %v", userID, err)
	}
	sc.Stage = session.StageInitial
	sc.RecordAction("welcomed")
	return sc, nil
}

func (h *Handlers) showFoodMenu(ctx context.Context, _ Args, userID string, sc session.Context) (session.Context, error) {
	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		return sc, h.sendRetry(ctx, userID, sc, fmt.Errorf("load categories: %w", err))
	}
	if len(categories) == 0 {
		h.sendText(ctx, userID, sc, "Sorry, the menu is empty right now. Please check back soon! 🙏")
		return sc, nil
	}

	rows := make([]chat.Row, 0, len(categories))
	for _, c := range categories {
		if len(rows) == maxListRows {
			break
		}
		rows = append(rows, chat.Row{
			ID:          "cat_" + c,
			Title:       truncate(emojiFor(c)+" "+titleCase(c), rowTitleLimit),
			Description: "Tap to see " + c,
		})
	}

	msg := chat.ListMessage{
		Header:     h.cfg.Restaurant,
		Body:       "Here's our menu! Pick a category to see what's cooking 🍳",
		ButtonText: "View Categories",
		Sections:   []chat.Section{{Title: "Categories", Rows: rows}},
	}
	if err := h.messenger.SendList(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send menu to %s: %v", userID, err)
	}
	sc.Stage = session.StageViewingMenu
	sc.RecordAction("viewed menu")
	return sc, nil
}

func (h *Handlers) showCategoryItems(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	category := args.String("category")
	items, err := h.catalog.Items(ctx, category)
	if err != nil {
		return sc, h.sendRetry(ctx, userID, sc, fmt.Errorf("load items for %q: %w", category, err))
	}
	if len(items) == 0 {
		h.sendText(ctx, userID, sc, fmt.Sprintf("Hmm, nothing available under %q right now. Say \"menu\" to see our categories! 🙏", category))
		return sc, nil
	}

	rows := make([]chat.Row, 0, len(items))
	for _, it := range items {
		if len(rows) == maxListRows {
			break
		}
		rows = append(rows, chat.Row{
			ID:          fmt.Sprintf("add_%d", it.ID),
			Title:       truncate(it.Name, rowTitleLimit),
			Description: truncate(fmt.Sprintf("%s • %s", h.price(it.Price), it.Description), rowDescLimit),
			ImageURL:    it.ImageURL,
		})
	}

	msg := chat.ListMessage{
		Header:     emojiFor(category) + " " + titleCase(category),
		Body:       "Tap an item to add it to your cart!",
		Footer:     "Prices in " + h.cfg.Currency,
		ButtonText: "View Items",
		Sections:   []chat.Section{{Title: titleCase(category), Rows: rows}},
	}
	if err := h.messenger.SendList(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send category items to %s: %v", userID, err)
	}
	sc.Stage = session.StageViewingItems
	sc.CurrentCategory = category
	sc.RecordAction("viewed " + category)
	return sc, nil
}

func (h *Handlers) recommendFood(ctx context.Context, args Args, userID string, sc session.Context) (session.Context, error) {
	tag := args.String("tag")
	items, err := h.catalog.Recommended(ctx, tag)
	if err != nil {
		return sc, h.sendRetry(ctx, userID, sc, fmt.Errorf("load recommendations %q: %w", tag, err))
	}
	if len(items) == 0 {
		h.sendText(ctx, userID, sc, "I couldn't find anything matching that taste. Say \"menu\" to browse everything we have! 🍽️")
		return sc, nil
	}

	sc.Recommendations = sc.Recommendations[:0]
	rows := make([]chat.Row, 0, len(items))
	for _, it := range items {
		sc.Recommendations = append(sc.Recommendations, session.Recommendation{
			FoodID: it.ID, Name: it.Name, Price: it.Price, Category: it.Category,
		})
		if len(rows) == maxListRows {
			continue
		}
		rows = append(rows, chat.Row{
			ID:          fmt.Sprintf("add_%d", it.ID),
			Title:       truncate(it.Name, rowTitleLimit),
			Description: truncate(fmt.Sprintf("%s • %s", h.price(it.Price), it.Description), rowDescLimit),
			ImageURL:    it.ImageURL,
		})
	}

	body := "Here's what I'd recommend! Tap one to add it to your cart 😋"
	msg := chat.ListMessage{
		Header:     "⭐ Recommendations",
		Body:       body,
		ButtonText: "See Picks",
		Sections:   []chat.Section{{Title: "Chef's picks", Rows: rows}},
	}
	if err := h.messenger.SendList(ctx, userID, sc.Platform, msg); err != nil {
		h.logger.Warn("send recommendations to %s: %v", userID, err)
	}
	sc.Stage = session.StageViewingRecommendations
	sc.RecordAction("recommended " + tag)
	return sc, nil
}

// sendText sends plain text, logging (not propagating) delivery failures.
func (h *Handlers) sendText(ctx context.Context, userID string, sc session.Context, text string) {
	if err := h.messenger.SendText(ctx, userID, sc.Platform, text); err != nil {
		h.logger.Warn("send text to %s: %v", userID, err)
	}
}

// sendRetry reports a gateway failure to the user and returns the wrapped
// error for the router's telemetry. The caller returns the pre-turn context.
func (h *Handlers) sendRetry(ctx context.Context, userID string, sc session.Context, err error) error {
	h.logger.Error("%v", err)
	h.sendText(ctx, userID, sc, "Sorry, something went wrong on our side. Please try again in a moment! 🙏")
	return err
}
