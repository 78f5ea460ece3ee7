package oracle

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/bhandaridiwash/newchatbot/internal/session"
)

// RulesOracle is a deterministic keyword classifier. It backs the local chat
// harness and tests, and serves as the fallback provider when no model API
// key is configured.
type RulesOracle struct{}

// NewRulesOracle creates the keyword classifier.
func NewRulesOracle() *RulesOracle {
	return &RulesOracle{}
}

var addPattern = regexp.MustCompile(`(?i)^(?:add|i(?:'d| would)? (?:like|want)|get me|order)\s+(?:(\d+)\s+)?(.+)$`)

func (o *RulesOracle) Decide(_ context.Context, text string, sc session.Context) (Decision, error) {
	t := strings.ToLower(strings.TrimSpace(text))

	switch {
	case containsAny(t, "menu", "browse", "what do you have", "what's available"):
		return tool(ToolShowFoodMenu, nil), nil
	case containsAny(t, "history", "my orders", "past orders", "previous order"):
		return tool(ToolShowOrderHistory, nil), nil
	case containsAny(t, "cart", "checkout", "check out", "basket"):
		return tool(ToolShowCartOptions, nil), nil
	case containsAny(t, "that's all", "thats all", "i'm done", "im done", "confirm my order", "place my order"):
		return tool(ToolConfirmOrder, nil), nil
	case containsAny(t, "recommend", "suggest", "surprise me", "what should i"):
		return tool(ToolRecommendFood, map[string]any{"tag": tasteTag(t)}), nil
	case containsAny(t, "dine in", "dine-in", "eat here", "table for"):
		return tool(ToolSelectServiceType, map[string]any{"service_type": session.ServiceDineIn}), nil
	case containsAny(t, "deliver", "bring it", "send it to"):
		return tool(ToolSelectServiceType, map[string]any{"service_type": session.ServiceDelivery}), nil
	case containsAny(t, "pickup", "pick up", "takeaway", "take away", "collect"):
		return tool(ToolSelectServiceType, map[string]any{"service_type": session.ServicePickup}), nil
	}

	if sc.Stage == session.StageConfirmingOrder {
		if containsAny(t, "yes", "yeah", "sure", "ok") {
			return tool(ToolProcessOrderResponse, map[string]any{"response": "yes"}), nil
		}
		if containsAny(t, "no", "nope", "cancel") {
			return tool(ToolProcessOrderResponse, map[string]any{"response": "no"}), nil
		}
	}

	if m := addPattern.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		args := map[string]any{"name": strings.TrimSpace(m[2])}
		if m[1] != "" {
			if q, err := strconv.Atoi(m[1]); err == nil {
				args["quantity"] = q
			}
		}
		return tool(ToolAddItemByName, args), nil
	}

	return tool(ToolSendTextReply, map[string]any{
		"message": "Namaste! 🙏 I can show you our menu, take your order, or recommend something tasty. Just say \"menu\" to get started!",
	}), nil
}

func tool(name string, args map[string]any) Decision {
	if args == nil {
		args = map[string]any{}
	}
	return Decision{ToolCall: &ToolCall{Name: name, Args: args}}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func tasteTag(t string) string {
	for _, tag := range []string{"spicy", "veg", "chicken", "momos", "noodles", "rice", "beverages", "sweet"} {
		if strings.Contains(t, tag) {
			return tag
		}
	}
	return "random"
}
