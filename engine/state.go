package engine

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/planagent/planagent/plan"
	"github.com/planagent/planagent/types"
)

// State is the full conversation state of one session. It is a plain
// serializable record: every step reads and writes it through the session
// store, so a conversation can be suspended after any question and resumed
// later, possibly in another process.
type State struct {
	Messages  []types.Message `json:"messages"`
	Plan      plan.Plan       `json:"current_plan"`
	TurnCount int             `json:"turn_count"`
}

func NewState() *State {
	return &State{
		Messages: []types.Message{},
		Plan:     plan.New(),
	}
}

func (s *State) Clone() *State {
	return &State{
		Messages:  append([]types.Message(nil), s.Messages...),
		Plan:      s.Plan.Clone(),
		TurnCount: s.TurnCount,
	}
}

func (s *State) Append(role types.Role, content string) {
	s.Messages = append(s.Messages, types.Message{Role: role, Content: content})
}

// LastUserMessage returns the content of the most recent user message.
func (s *State) LastUserMessage() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == types.RoleUser {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}

// LastAssistantMessage returns the content of the most recent assistant
// message, i.e. the question the user is currently answering.
func (s *State) LastAssistantMessage() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == types.RoleAssistant {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}

// Snapshot serializes the state for external checkpointing.
func (s *State) Snapshot() ([]byte, error) {
	data, err := sonic.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

// RestoreState decodes a snapshot produced by Snapshot.
func RestoreState(data []byte) (*State, error) {
	var s State
	if err := sonic.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if s.Plan == nil {
		s.Plan = plan.New()
	}
	return &s, nil
}
