package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/planagent/planagent/extract"
	"github.com/planagent/planagent/plan"
	"github.com/planagent/planagent/question"
	"github.com/planagent/planagent/types"
)

// Engine runs the turn loop of one slot-filling conversation: absorb the
// latest user message into the plan, decide whether to terminate, and
// produce the next question. It holds no conversation state of its own; the
// state travels through step as an explicit record, so one Engine serves any
// number of sessions.
type Engine struct {
	schema     *plan.Schema
	extractor  extract.Extractor
	generator  question.Generator
	planSchema string
}

// New validates the schema and builds an engine. Strategies are injected at
// construction; a schema that fails validation prevents engine creation.
func New(schema *plan.Schema, extractor extract.Extractor, generator question.Generator) (*Engine, error) {
	if schema == nil {
		return nil, fmt.Errorf("engine requires a slot schema")
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid slot schema: %w", err)
	}
	if extractor == nil {
		return nil, fmt.Errorf("engine requires an extraction strategy")
	}
	if generator == nil {
		return nil, fmt.Errorf("engine requires a question strategy")
	}
	planSchema, err := schema.JSONSchema()
	if err != nil {
		return nil, fmt.Errorf("render plan schema: %w", err)
	}
	return &Engine{
		schema:     schema,
		extractor:  extractor,
		generator:  generator,
		planSchema: planSchema,
	}, nil
}

func (e *Engine) Schema() *plan.Schema {
	return e.schema
}

// step runs one absorb→decide→produce cycle, mutating st. The caller owns
// st and decides whether to commit it; step returns an error without
// touching the plan when a strategy fails.
func (e *Engine) step(ctx context.Context, st *State) (*StepResult, error) {
	userText, _ := st.LastUserMessage()
	lastQuestion, _ := st.LastAssistantMessage()

	// absorb
	if userText != "" {
		req := &extract.Request{
			UserText:     userText,
			Plan:         st.Plan.Clone(),
			Question:     lastQuestion,
			PlanSchema:   e.planSchema,
			MissingSlots: e.missingSlotInfos(st.Plan),
		}
		slog.Debug("extracting slots", "turn", st.TurnCount)
		extracted, err := e.extractor.Extract(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("extract slots: %w", err)
		}
		st.Plan = plan.Merge(st.Plan, e.filterValid(extracted))
		slog.Debug("merged extraction", "extracted", extracted, "plan", st.Plan)
	}

	// decide
	if reason := e.terminationReason(st); reason != types.ReasonNone {
		slog.Debug("conversation terminated", "reason", reason, "turn", st.TurnCount)
		return &StepResult{
			CurrentPlan: st.Plan.Clone(),
			IsComplete:  true,
			Reason:      reason,
		}, nil
	}

	// produce
	q, err := e.generator.NextQuestion(ctx, st.Plan)
	if err != nil {
		return nil, fmt.Errorf("generate question: %w", err)
	}
	st.Append(types.RoleAssistant, q)
	slog.Debug("produced question", "question", q)

	return &StepResult{
		AgentQuestion: q,
		CurrentPlan:   st.Plan.Clone(),
	}, nil
}

// terminationReason applies the decide step: the conversation ends when the
// turn budget is exhausted, or when every required and every optional slot
// is filled. Optional slots intentionally block completion.
func (e *Engine) terminationReason(st *State) types.CompletionReason {
	if st.TurnCount > e.schema.MaxTurns {
		return types.ReasonTurnLimit
	}
	if len(st.Plan.MissingRequired(e.schema)) == 0 && len(st.Plan.MissingOptional(e.schema)) == 0 {
		return types.ReasonPlanFilled
	}
	return types.ReasonNone
}

// filterValid drops extracted values that fail the schema's slot-type
// validation. Unknown slots pass through untouched.
func (e *Engine) filterValid(extracted map[string]string) map[string]string {
	out := make(map[string]string, len(extracted))
	for slot, value := range extracted {
		if e.schema.Has(slot) && !e.schema.ValidValue(slot, value) {
			slog.Warn("dropping slot value failing type validation", "slot", slot, "value", value)
			continue
		}
		out[slot] = value
	}
	return out
}

func (e *Engine) missingSlotInfos(p plan.Plan) []types.SlotInfo {
	var missing []types.SlotInfo
	for _, info := range e.schema.SlotInfos() {
		if !p.Filled(info.Name) {
			missing = append(missing, info)
		}
	}
	return missing
}
