package question

import (
	"context"

	"github.com/planagent/planagent/plan"
)

// CompletionMessage is the fixed sentence returned once every slot is
// filled.
const CompletionMessage = "여행 계획이 완료되었습니다."

const fallbackQuestion = "추가 정보를 알려주세요."

func defaultTemplates() map[string]string {
	return map[string]string{
		"destination": "어디로 여행을 가고 싶으신가요?",
		"start_date":  "언제 출발하실 예정인가요?",
		"duration":    "여행 기간은 며칠인가요?",
		"budget":      "예산은 얼마 정도 생각하고 계신가요?",
		"companions":  "누구와 함께 가시나요?",
		"purpose":     "여행의 목적은 무엇인가요?",
	}
}

// RuleGenerator asks about the next unfilled slot in schema order using
// fixed Korean templates.
type RuleGenerator struct {
	schema    *plan.Schema
	Templates map[string]string
}

func NewRuleGenerator(s *plan.Schema) *RuleGenerator {
	return &RuleGenerator{
		schema:    s,
		Templates: defaultTemplates(),
	}
}

func (g *RuleGenerator) NextQuestion(ctx context.Context, p plan.Plan) (string, error) {
	slot, ok := p.NextSlot(g.schema)
	if !ok {
		return CompletionMessage, nil
	}
	if q, found := g.Templates[slot]; found {
		return q, nil
	}
	return fallbackQuestion, nil
}
