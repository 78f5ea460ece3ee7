// Package validate screens oracle tool calls before they reach a handler.
// Model output is untrusted input; anything malformed is turned into a
// polite correction for the user instead of a handler crash.
package validate

import (
	"fmt"

	"github.com/bhandaridiwash/newchatbot/internal/oracle"
)

// Problem is a rejected tool call. Error() carries the diagnostic for logs;
// UserMessage is what the customer sees.
type Problem struct {
	Tool        string
	Reason      string
	UserMessage string
}

func (p *Problem) Error() string {
	return fmt.Sprintf("invalid %s call: %s", p.Tool, p.Reason)
}

const fallbackMessage = "Sorry, I didn't quite get that. Could you rephrase? 😊"

func reject(tool, reason, userMessage string) *Problem {
	if userMessage == "" {
		userMessage = fallbackMessage
	}
	return &Problem{Tool: tool, Reason: reason, UserMessage: userMessage}
}

// ToolCall checks a tool call's name and argument shape. A nil return means
// the call may be dispatched.
func ToolCall(tc *oracle.ToolCall) *Problem {
	if tc == nil || tc.Name == "" {
		return reject("", "missing tool name", "")
	}
	check, ok := checks[tc.Name]
	if !ok {
		return reject(tc.Name, "unknown tool", "")
	}
	if check == nil {
		return nil
	}
	return check(tc)
}

var checks = map[string]func(*oracle.ToolCall) *Problem{
	oracle.ToolShowFoodMenu:     nil,
	oracle.ToolShowCartOptions:  nil,
	oracle.ToolConfirmOrder:     nil,
	oracle.ToolShowOrderHistory: nil,
	oracle.ToolRecommendFood:    nil,

	oracle.ToolShowCategoryItems: func(tc *oracle.ToolCall) *Problem {
		if s, ok := stringArg(tc.Args, "category"); !ok || s == "" {
			return reject(tc.Name, "category missing or not a string",
				"Which category would you like to see? Try momos, noodles, rice or beverages 🍽️")
		}
		return nil
	},

	oracle.ToolAddItemByName: func(tc *oracle.ToolCall) *Problem {
		if s, ok := stringArg(tc.Args, "name"); !ok || s == "" {
			return reject(tc.Name, "name missing or not a string",
				"Which dish would you like to add? 🥟")
		}
		if q, present, ok := intArg(tc.Args, "quantity"); present && (!ok || q <= 0) {
			return reject(tc.Name, "quantity not a positive integer",
				"How many would you like? Please give me a number like 2 😊")
		}
		return nil
	},

	oracle.ToolAddMultipleItems: func(tc *oracle.ToolCall) *Problem {
		raw, ok := tc.Args["items"].([]any)
		if !ok || len(raw) == 0 {
			return reject(tc.Name, "items missing or empty",
				"Which dishes would you like to add? 🥟")
		}
		for i, entry := range raw {
			m, ok := entry.(map[string]any)
			if !ok {
				return reject(tc.Name, fmt.Sprintf("item %d is not an object", i), "")
			}
			if s, ok := stringArg(m, "name"); !ok || s == "" {
				return reject(tc.Name, fmt.Sprintf("item %d has no name", i), "")
			}
			if q, present, ok := intArg(m, "quantity"); present && (!ok || q <= 0) {
				return reject(tc.Name, fmt.Sprintf("item %d has a bad quantity", i),
					"How many of each would you like? Please use numbers like 2 😊")
			}
		}
		return nil
	},

	oracle.ToolSelectServiceType: func(tc *oracle.ToolCall) *Problem {
		s, _ := stringArg(tc.Args, "service_type")
		switch s {
		case "dine_in", "delivery", "pickup":
			return nil
		}
		return reject(tc.Name, fmt.Sprintf("service type %q not recognized", s),
			"Would you like to dine in 🪑, have it delivered 🛵, or pick it up 🛍️?")
	},

	oracle.ToolProcessOrderResponse: func(tc *oracle.ToolCall) *Problem {
		s, _ := stringArg(tc.Args, "response")
		if s != "yes" && s != "no" {
			return reject(tc.Name, fmt.Sprintf("response %q not yes/no", s),
				"Should I place the order? Please reply yes or no 😊")
		}
		return nil
	},

	oracle.ToolSendTextReply: func(tc *oracle.ToolCall) *Problem {
		if s, ok := stringArg(tc.Args, "message"); !ok || s == "" {
			return reject(tc.Name, "message missing or empty", "")
		}
		return nil
	},
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// intArg reads an integer argument. JSON numbers decode as float64, so both
// forms are accepted; fractional values are rejected.
func intArg(args map[string]any, key string) (value int, present, ok bool) {
	v, exists := args[key]
	if !exists {
		return 0, false, false
	}
	switch n := v.(type) {
	case int:
		return n, true, true
	case float64:
		if n != float64(int(n)) {
			return 0, true, false
		}
		return int(n), true, true
	default:
		return 0, true, false
	}
}
