package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhandaridiwash/newchatbot/internal/session"
)

func decide(t *testing.T, text string, sc session.Context) Decision {
	t.Helper()
	d, err := NewRulesOracle().Decide(context.Background(), text, sc)
	require.NoError(t, err)
	return d
}

func TestRulesOracleKeywordRouting(t *testing.T) {
	sc := session.NewContext("console")

	tests := []struct {
		text string
		tool string
	}{
		{"show me the menu", ToolShowFoodMenu},
		{"what's in my cart?", ToolShowCartOptions},
		{"that's all, thanks", ToolConfirmOrder},
		{"can you recommend something spicy", ToolRecommendFood},
		{"I want it delivered", ToolSelectServiceType},
		{"we'll dine in tonight", ToolSelectServiceType},
		{"show my order history", ToolShowOrderHistory},
	}
	for _, tt := range tests {
		d := decide(t, tt.text, sc)
		require.NotNil(t, d.ToolCall, "text %q", tt.text)
		assert.Equal(t, tt.tool, d.ToolCall.Name, "text %q", tt.text)
	}
}

func TestRulesOracleAddByName(t *testing.T) {
	sc := session.NewContext("console")

	d := decide(t, "add 2 tandoori momo", sc)
	require.NotNil(t, d.ToolCall)
	assert.Equal(t, ToolAddItemByName, d.ToolCall.Name)
	assert.Equal(t, "tandoori momo", d.ToolCall.Args["name"])
	assert.Equal(t, 2, d.ToolCall.Args["quantity"])
}

func TestRulesOracleYesNoOnlyDuringConfirmation(t *testing.T) {
	confirming := session.NewContext("console")
	confirming.Stage = session.StageConfirmingOrder

	d := decide(t, "yes", confirming)
	require.NotNil(t, d.ToolCall)
	assert.Equal(t, ToolProcessOrderResponse, d.ToolCall.Name)
	assert.Equal(t, "yes", d.ToolCall.Args["response"])

	browsing := session.NewContext("console")
	d = decide(t, "yes", browsing)
	require.NotNil(t, d.ToolCall)
	assert.Equal(t, ToolSendTextReply, d.ToolCall.Name, "bare yes outside confirmation falls back")
}

func TestRulesOracleFallback(t *testing.T) {
	d := decide(t, "what's the weather like", session.NewContext("console"))
	require.NotNil(t, d.ToolCall)
	assert.Equal(t, ToolSendTextReply, d.ToolCall.Name)
	assert.NotEmpty(t, d.ToolCall.Args["message"])
}

func TestCatalogCoversRegisteredOracleTools(t *testing.T) {
	defs := Catalog()
	seen := map[string]bool{}
	for _, def := range defs {
		assert.False(t, seen[def.Name], "duplicate tool %s", def.Name)
		seen[def.Name] = true
	}
	for _, name := range []string{
		ToolShowFoodMenu, ToolShowCategoryItems, ToolAddItemByName,
		ToolAddMultipleItems, ToolShowCartOptions, ToolConfirmOrder,
		ToolSelectServiceType, ToolProcessOrderResponse, ToolShowOrderHistory,
		ToolRecommendFood, ToolSendTextReply,
	} {
		assert.True(t, seen[name], "catalog missing %s", name)
	}
}
