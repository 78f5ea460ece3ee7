package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/bhandaridiwash/newchatbot/internal/session"
	"github.com/bhandaridiwash/newchatbot/pkg/logx"
)

const (
	openaiMaxTokens    = 1024
	openaiDefaultModel = "gpt-4o-mini"
)

// OpenAIOracle classifies intent with the OpenAI Responses API.
type OpenAIOracle struct {
	client     openai.Client
	model      string
	restaurant string
	logger     *logx.Logger
}

// NewOpenAIOracle creates an OpenAI-backed oracle.
func NewOpenAIOracle(apiKey, model, restaurant string) *OpenAIOracle {
	if model == "" {
		model = openaiDefaultModel
	}
	return &OpenAIOracle{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		model:      model,
		restaurant: restaurant,
		logger:     logx.NewLogger("oracle-openai"),
	}
}

func (o *OpenAIOracle) Decide(ctx context.Context, text string, sc session.Context) (Decision, error) {
	system, user := BuildPrompt(o.restaurant, text, sc)

	var tools []responses.ToolUnionParam
	for _, def := range Catalog() {
		properties := make(map[string]any, len(def.InputSchema.Properties))
		for name, prop := range def.InputSchema.Properties {
			properties[name] = propertySchema(prop)
		}
		tools = append(tools, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters: openai.FunctionParameters(map[string]any{
					"type":       "object",
					"properties": properties,
					"required":   def.InputSchema.Required,
				}),
			},
		})
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(openaiMaxTokens),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(fmt.Sprintf("System: %s\n\n%s", system, user)),
		},
		Tools: tools,
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return Decision{}, fmt.Errorf("openai responses: %w", err)
	}
	if resp == nil {
		return Decision{}, fmt.Errorf("openai responses: empty response")
	}

	for i := range resp.Output {
		item := &resp.Output[i]
		if item.Type != "function_call" {
			continue
		}
		fc := item.AsFunctionCall()
		args := map[string]any{}
		if fc.Arguments != "" {
			if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
				return Decision{}, fmt.Errorf("parse tool input for %s: %w", fc.Name, err)
			}
		}
		o.logger.Debug("decided tool %s", fc.Name)
		return Decision{ToolCall: &ToolCall{Name: fc.Name, Args: args}}, nil
	}

	if out := resp.OutputText(); out != "" {
		return Decision{Reply: out}, nil
	}
	return Decision{}, fmt.Errorf("openai responses: no usable output")
}
