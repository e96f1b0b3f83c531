// Package structured turns a chat model into a typed function. The model is
// forced to answer through exactly one tool call, and the call arguments are
// decoded into the caller's result type.
package structured

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

// MessageBuilder renders the request into the messages sent to the model.
type MessageBuilder[TIn any] func(ctx context.Context, in TIn) ([]*schema.Message, error)

// Caller invokes a chat model and decodes the forced tool call into TOut.
// The tool schema is derived from TOut's struct tags once at construction.
type Caller[TIn, TOut any] struct {
	chatModel model.ToolCallingChatModel
	messages  MessageBuilder[TIn]
	opts      []model.Option
}

func NewCaller[TIn, TOut any](
	chatModel model.ToolCallingChatModel,
	messages MessageBuilder[TIn],
	toolName, toolDesc string,
) (*Caller[TIn, TOut], error) {
	toolInfo, err := utils.GoStruct2ToolInfo[TOut](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("derive tool schema: %w", err)
	}
	return &Caller[TIn, TOut]{
		chatModel: chatModel,
		messages:  messages,
		opts: []model.Option{
			model.WithTools([]*schema.ToolInfo{toolInfo}),
			model.WithToolChoice(schema.ToolChoiceForced, toolInfo.Name),
		},
	}, nil
}

func (c *Caller[TIn, TOut]) Call(ctx context.Context, in TIn) (*TOut, error) {
	messages, err := c.messages(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	response, err := c.chatModel.Generate(ctx, messages, c.opts...)
	if err != nil {
		return nil, fmt.Errorf("call model: %w", err)
	}
	if len(response.ToolCalls) == 0 {
		return nil, fmt.Errorf("model answered without a tool call: %s", response.Content)
	}

	var out TOut
	if err := sonic.UnmarshalString(response.ToolCalls[0].Function.Arguments, &out); err != nil {
		return nil, fmt.Errorf("decode tool call arguments: %w", err)
	}
	return &out, nil
}
