package engine

import (
	"github.com/planagent/planagent/plan"
	"github.com/planagent/planagent/types"
)

// StepResult is the value returned to the caller after each engine step.
// It is a snapshot: CurrentPlan is a copy and the result never changes
// after it is produced.
type StepResult struct {
	// AgentQuestion is the question produced this step, empty when the
	// conversation terminated.
	AgentQuestion string `json:"agent_question,omitempty"`
	// UserResponse echoes the user text absorbed this step, empty on the
	// opening step.
	UserResponse string                 `json:"user_response,omitempty"`
	CurrentPlan  plan.Plan              `json:"current_plan"`
	IsComplete   bool                   `json:"is_complete"`
	Reason       types.CompletionReason `json:"reason,omitempty"`
	// Error carries a strategy failure. The session state is unchanged when
	// it is set, so the same turn may be retried.
	Error string `json:"error,omitempty"`
}
