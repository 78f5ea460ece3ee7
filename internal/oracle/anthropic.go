package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bhandaridiwash/newchatbot/internal/session"
	"github.com/bhandaridiwash/newchatbot/pkg/logx"
)

const (
	anthropicMaxTokens    = 1024
	anthropicDefaultModel = "claude-3-5-haiku-latest"
)

// AnthropicOracle classifies intent with Claude tool use.
type AnthropicOracle struct {
	client     anthropic.Client
	model      anthropic.Model
	restaurant string
	logger     *logx.Logger
}

// NewAnthropicOracle creates a Claude-backed oracle.
func NewAnthropicOracle(apiKey, model, restaurant string) *AnthropicOracle {
	if model == "" {
		model = anthropicDefaultModel
	}
	return &AnthropicOracle{
		client:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:      anthropic.Model(model),
		restaurant: restaurant,
		logger:     logx.NewLogger("oracle-anthropic"),
	}
}

func (o *AnthropicOracle) Decide(ctx context.Context, text string, sc session.Context) (Decision, error) {
	system, user := BuildPrompt(o.restaurant, text, sc)

	var tools []anthropic.ToolUnionParam
	for _, def := range Catalog() {
		var properties any
		if len(def.InputSchema.Properties) > 0 {
			props := make(map[string]any, len(def.InputSchema.Properties))
			for name, prop := range def.InputSchema.Properties {
				props[name] = propertySchema(prop)
			}
			properties = props
		}
		tools = append(tools, anthropic.ToolUnionParamOfTool(anthropic.ToolInputSchemaParam{
			Type:       "object",
			Properties: properties,
			Required:   def.InputSchema.Required,
		}, def.Name))
	}

	params := anthropic.MessageNewParams{
		Model:     o.model,
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: system, Type: "text"}},
		Messages: []anthropic.MessageParam{
			{Role: anthropic.MessageParamRoleUser, Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(user)}},
		},
		Tools: tools,
		// One tool per turn keeps the orchestrator deterministic.
		ToolChoice: anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}},
	}

	resp, err := o.client.Messages.New(ctx, params)
	if err != nil {
		return Decision{}, fmt.Errorf("anthropic messages: %w", err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return Decision{}, fmt.Errorf("anthropic messages: empty response")
	}

	for i := range resp.Content {
		block := &resp.Content[i]
		switch block.Type {
		case "tool_use":
			tu := block.AsToolUse()
			args := map[string]any{}
			if len(tu.Input) > 0 {
				if err := json.Unmarshal(tu.Input, &args); err != nil {
					return Decision{}, fmt.Errorf("parse tool input for %s: %w", tu.Name, err)
				}
			}
			o.logger.Debug("decided tool %s", tu.Name)
			return Decision{ToolCall: &ToolCall{Name: tu.Name, Args: args}}, nil
		case "text":
			tb := block.AsText()
			if tb.Text != "" {
				return Decision{Reply: tb.Text}, nil
			}
		}
	}
	return Decision{}, fmt.Errorf("anthropic messages: no usable content block")
}

func propertySchema(prop Property) map[string]any {
	schema := map[string]any{"type": prop.Type}
	if prop.Description != "" {
		schema["description"] = prop.Description
	}
	if len(prop.Enum) > 0 {
		schema["enum"] = prop.Enum
	}
	if prop.Type == "array" && prop.Items != nil {
		schema["items"] = propertySchema(*prop.Items)
	}
	return schema
}
