// Package oracle decides what a free-text message means. The oracle is only
// consulted for text the deterministic layers of the router cannot resolve;
// interactive taps and stage-bound replies never reach it.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/bhandaridiwash/newchatbot/internal/session"
)

// ToolCall is the oracle's request to run a named tool with arguments. The
// arguments come from the model untrusted and must pass validation before
// any handler sees them.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Decision is the oracle's verdict on one user message. Exactly one of
// ToolCall and Reply is set: a tool to run, or a direct text answer.
type Decision struct {
	ToolCall *ToolCall
	Reply    string
}

// Oracle maps free text plus conversation state to a Decision.
type Oracle interface {
	Decide(ctx context.Context, text string, sc session.Context) (Decision, error)
}

// Property describes one field of a tool's input schema.
type Property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Items       *Property `json:"items,omitempty"`
}

// InputSchema is a JSON-schema object definition for tool arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// ToolDefinition describes one tool the oracle may select.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

// Tool names the oracle may select. These must stay in lockstep with the
// handlers registered in the tools package.
const (
	ToolShowFoodMenu         = "show_food_menu"
	ToolShowCategoryItems    = "show_category_items"
	ToolAddItemByName        = "add_item_by_name"
	ToolAddMultipleItems     = "add_multiple_items"
	ToolShowCartOptions      = "show_cart_options"
	ToolConfirmOrder         = "confirm_order"
	ToolSelectServiceType    = "select_service_type"
	ToolProcessOrderResponse = "process_order_response"
	ToolShowOrderHistory     = "show_order_history"
	ToolRecommendFood        = "recommend_food"
	ToolSendTextReply        = "send_text_reply"
)

// Catalog returns the fixed tool catalog advertised to the model.
func Catalog() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        ToolShowFoodMenu,
			Description: "Show the food menu categories. Use when the user wants to browse or see the menu.",
			InputSchema: InputSchema{Type: "object"},
		},
		{
			Name:        ToolShowCategoryItems,
			Description: "Show the items of one menu category.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"category": {Type: "string", Description: "Menu category, e.g. momos, noodles, rice, beverages."},
				},
				Required: []string{"category"},
			},
		},
		{
			Name:        ToolAddItemByName,
			Description: "Add one food item to the cart by its (possibly partial) name. Use 'it' resolution only via recent recommendations.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"name":     {Type: "string", Description: "Food name as the user wrote it."},
					"quantity": {Type: "integer", Description: "How many to add; defaults to 1."},
				},
				Required: []string{"name"},
			},
		},
		{
			Name:        ToolAddMultipleItems,
			Description: "Add several food items to the cart in one message.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"items": {
						Type:        "array",
						Description: "Items to add.",
						Items: &Property{
							Type: "object",
							Description: "One item: name (string) and optional quantity (integer).",
						},
					},
				},
				Required: []string{"items"},
			},
		},
		{
			Name:        ToolShowCartOptions,
			Description: "Show the cart contents with checkout options. Use when the user asks about their cart or wants to check out.",
			InputSchema: InputSchema{Type: "object"},
		},
		{
			Name:        ToolConfirmOrder,
			Description: "Start order confirmation for the current cart. Use when the user says they are done ordering.",
			InputSchema: InputSchema{Type: "object"},
		},
		{
			Name:        ToolSelectServiceType,
			Description: "Record how the user wants their order served.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"service_type": {Type: "string", Enum: []string{session.ServiceDineIn, session.ServiceDelivery, session.ServicePickup}},
				},
				Required: []string{"service_type"},
			},
		},
		{
			Name:        ToolProcessOrderResponse,
			Description: "Interpret a yes/no style answer during order confirmation.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"response": {Type: "string", Enum: []string{"yes", "no"}},
				},
				Required: []string{"response"},
			},
		},
		{
			Name:        ToolShowOrderHistory,
			Description: "Show the user's recent orders.",
			InputSchema: InputSchema{Type: "object"},
		},
		{
			Name:        ToolRecommendFood,
			Description: "Recommend food. Pass a taste tag (spicy, veg, category name) when the user expressed one, or 'random'.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"tag": {Type: "string", Description: "Taste tag or 'random'."},
				},
			},
		},
		{
			Name:        ToolSendTextReply,
			Description: "Answer the user directly with text when no other tool applies (greetings, questions about the restaurant, small talk).",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"message": {Type: "string", Description: "The reply to send."},
				},
				Required: []string{"message"},
			},
		},
	}
}

const systemPromptTemplate = `You are the intent brain of %s, a restaurant ordering assistant on chat.
Decide what the customer wants and call exactly one tool. Never invent menu
items or prices; the tools look everything up. Prefer send_text_reply only
when no ordering tool fits.`

// BuildPrompt renders the system prompt and the user turn with conversation
// state attached. Shared by all model-backed oracles.
func BuildPrompt(restaurant, text string, sc session.Context) (system, user string) {
	system = fmt.Sprintf(systemPromptTemplate, restaurant)

	var b strings.Builder
	fmt.Fprintf(&b, "Conversation state:\n- stage: %s\n", sc.Stage)
	if len(sc.Cart) > 0 {
		fmt.Fprintf(&b, "- cart: %d items, total %.0f\n", sc.Cart.Count(), sc.Cart.Total())
	} else {
		b.WriteString("- cart: empty\n")
	}
	if sc.ServiceType != "" {
		fmt.Fprintf(&b, "- service type: %s\n", sc.ServiceType)
	}
	if len(sc.Recommendations) > 0 {
		names := make([]string, 0, len(sc.Recommendations))
		for _, r := range sc.Recommendations {
			names = append(names, r.Name)
		}
		fmt.Fprintf(&b, "- recently recommended: %s\n", strings.Join(names, ", "))
	}
	if sc.LastAddedItem != "" {
		fmt.Fprintf(&b, "- last added item: %s\n", sc.LastAddedItem)
	}
	fmt.Fprintf(&b, "\nCustomer message: %s", text)
	return system, b.String()
}
