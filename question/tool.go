package question

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/planagent/planagent/plan"
	"github.com/planagent/planagent/types"
)

const defaultQuestionSystemPrompt = `You are a friendly travel planning assistant. Guide the user through completing their travel plan in natural conversation.

Respond as if chatting with a friend:
- Ask about exactly one missing slot per turn, preferring the first missing required slot, then the first missing optional one.
- Acknowledge what the user already told you before asking the next question.
- Keep questions short and conversational; no lists or bullet points.
- If every slot is filled, say the plan is complete instead of asking anything.
- Reply in %s.
`

// ModelGenerator phrases the next question with a chat model. By default it
// speaks Korean through a built-in system prompt; WithSystemPrompt replaces
// that prompt wholesale.
type ModelGenerator struct {
	schema       *plan.Schema
	planSchema   string
	lang         string
	systemPrompt string
	chatModel    model.BaseChatModel
}

type GeneratorOption func(*ModelGenerator)

// WithLang sets the reply language of the built-in system prompt.
func WithLang(lang string) GeneratorOption {
	return func(g *ModelGenerator) {
		g.lang = lang
	}
}

// WithSystemPrompt overrides the system prompt entirely. WithLang has no
// effect on an overridden prompt.
func WithSystemPrompt(systemPrompt string) GeneratorOption {
	return func(g *ModelGenerator) {
		g.systemPrompt = systemPrompt
	}
}

func NewModelGenerator(s *plan.Schema, chatModel model.BaseChatModel, opts ...GeneratorOption) (*ModelGenerator, error) {
	planSchema, err := s.JSONSchema()
	if err != nil {
		return nil, err
	}
	g := &ModelGenerator{
		schema:     s,
		planSchema: planSchema,
		lang:       "Korean",
		chatModel:  chatModel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

func (g *ModelGenerator) NextQuestion(ctx context.Context, p plan.Plan) (string, error) {
	messages, err := g.prompt(p)
	if err != nil {
		return "", err
	}
	response, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response.Content, nil
}

// NextQuestionStream streams the next question token by token.
func (g *ModelGenerator) NextQuestionStream(ctx context.Context, p plan.Plan) (*schema.StreamReader[string], error) {
	messages, err := g.prompt(p)
	if err != nil {
		return nil, err
	}
	stream, err := g.chatModel.Stream(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("LLM stream call failed: %w", err)
	}
	return schema.StreamReaderWithConvert(stream, func(message *schema.Message) (string, error) {
		return message.Content, nil
	}), nil
}

func (g *ModelGenerator) prompt(p plan.Plan) ([]*schema.Message, error) {
	var missing []types.SlotInfo
	for _, info := range g.schema.SlotInfos() {
		if !p.Filled(info.Name) {
			missing = append(missing, info)
		}
	}
	user, err := types.FormatPromptContext(&types.PromptContext{
		Plan:         p,
		PlanSchema:   g.planSchema,
		MissingSlots: missing,
	})
	if err != nil {
		return nil, fmt.Errorf("build question prompt: %w", err)
	}

	system := g.systemPrompt
	if system == "" {
		system = fmt.Sprintf(defaultQuestionSystemPrompt, g.lang)
	}
	return []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}, nil
}
