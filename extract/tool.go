package extract

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/planagent/planagent/structured"
	"github.com/planagent/planagent/types"
)

const (
	extractSlotsToolName        = "extract_plan_slots"
	extractSlotsToolDescription = "Extract travel plan slot values explicitly provided by the user. Only include slots the user actually mentioned."
)

type slotValue struct {
	Name  string `json:"name" jsonschema:"required,description=Slot name taken from the plan schema"`
	Value string `json:"value" jsonschema:"required,description=Extracted value as plain text"`
}

type extractSlotsArgs struct {
	Slots []slotValue `json:"slots" jsonschema:"description=Slots explicitly provided by the user; empty when nothing was provided"`
}

// ToolBasedExtractor asks a chat model to extract slot values through a
// forced tool call.
type ToolBasedExtractor struct {
	caller *structured.Caller[*Request, extractSlotsArgs]
}

func NewToolBasedExtractor(chatModel model.ToolCallingChatModel) (*ToolBasedExtractor, error) {
	caller, err := structured.NewCaller[*Request, extractSlotsArgs](
		chatModel,
		buildExtractPrompt,
		extractSlotsToolName,
		extractSlotsToolDescription,
	)
	if err != nil {
		return nil, fmt.Errorf("create extract caller: %w", err)
	}
	return &ToolBasedExtractor{caller: caller}, nil
}

func (e *ToolBasedExtractor) Extract(ctx context.Context, req *Request) (map[string]string, error) {
	result, err := e.caller.Call(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	extracted := map[string]string{}
	if result == nil {
		return extracted, nil
	}
	for _, slot := range result.Slots {
		if slot.Name == "" || slot.Value == "" {
			continue
		}
		extracted[slot.Name] = slot.Value
	}
	return extracted, nil
}

func buildExtractPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	message, err := types.FormatPromptContext(&types.PromptContext{
		Plan:         req.Plan,
		PlanSchema:   req.PlanSchema,
		Question:     req.Question,
		Answer:       req.UserText,
		MissingSlots: req.MissingSlots,
	})
	if err != nil {
		return nil, fmt.Errorf("convert to prompt message failed: %w", err)
	}

	systemPrompt := fmt.Sprintf(`You are an assistant for a travel planning robot. Analyze the user's latest answer together with the assistant's question and extract slot values for the travel plan.

Rules:
- Only extract information the user explicitly provided; never guess or infer missing values.
- Use slot names exactly as defined in the plan schema.
- Normalize dates to YYYY-MM-DD.
- If the answer contains no plan information, return an empty slot list.

Call the '%s' tool with the result.`, extractSlotsToolName)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(message),
	}, nil
}
