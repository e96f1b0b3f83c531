package simulate

import "regexp"

// Scenario is one simulated user: the facts they know and how they reveal
// them.
type Scenario struct {
	Name        string            `json:"name"`
	UserInfo    map[string]string `json:"user_info"`
	Style       string            `json:"style,omitempty"`
	GroundTruth map[string]string `json:"ground_truth"`
}

const (
	StyleConcise   = "concise"
	StyleTalkative = "talkative"
	StyleReluctant = "reluctant"
)

var slotIntentPatterns = map[string]*regexp.Regexp{
	"destination": regexp.MustCompile(`(어디|목적지|가고\s*싶|여행지)`),
	"start_date":  regexp.MustCompile(`(언제|출발|시작|날짜)`),
	"duration":    regexp.MustCompile(`(며칠|기간|얼마나)`),
	"budget":      regexp.MustCompile(`(예산|비용|돈|얼마)`),
	"companions":  regexp.MustCompile(`(누구|동행|함께)`),
	"purpose":     regexp.MustCompile(`(목적|이유|왜)`),
}

// slotIntentOrder fixes the probe order; "얼마나" (duration) must be tried
// before "얼마" (budget).
var slotIntentOrder = []string{"destination", "start_date", "duration", "budget", "companions", "purpose"}

// Simulator answers agent questions from scenario data, for driving the
// engine end to end without a human.
type Simulator struct {
	scenario *Scenario
}

func NewSimulator(scenario *Scenario) *Simulator {
	return &Simulator{scenario: scenario}
}

// Respond produces the simulated user's answer to an agent question.
func (s *Simulator) Respond(agentQuestion string) string {
	slot := detectSlotIntent(agentQuestion)
	if slot == "" {
		return s.applyStyle("잘 이해하지 못했어요. 다시 설명해주세요.")
	}
	value, ok := s.scenario.UserInfo[slot]
	if !ok || value == "" {
		return s.applyStyle("그건 잘 모르겠어요.")
	}
	return s.applyStyle(value)
}

func detectSlotIntent(question string) string {
	for _, slot := range slotIntentOrder {
		if slotIntentPatterns[slot].MatchString(question) {
			return slot
		}
	}
	return ""
}

func (s *Simulator) applyStyle(response string) string {
	switch s.scenario.Style {
	case StyleTalkative:
		return response + " 그리고 정말 기대돼요!"
	case StyleReluctant:
		return "음... " + response
	default:
		return response
	}
}
