package simulate

import (
	"context"
	"fmt"

	"github.com/planagent/planagent/engine"
	"github.com/planagent/planagent/plan"
	"github.com/planagent/planagent/types"
)

// Report summarizes one simulated conversation.
type Report struct {
	Turns     int                    `json:"turns"`
	FinalPlan plan.Plan              `json:"final_plan"`
	Reason    types.CompletionReason `json:"reason"`
	// Matched maps each ground-truth slot to whether the final plan holds
	// the expected value.
	Matched  map[string]bool `json:"matched"`
	Accuracy float64         `json:"accuracy"`
}

// Runner drives a session to completion against a simulated user.
type Runner struct {
	sessions *engine.Sessions
	// MaxSteps caps the loop independently of the engine's turn budget, as
	// a safety net against a strategy that never terminates.
	MaxSteps int
}

func NewRunner(sessions *engine.Sessions) *Runner {
	return &Runner{sessions: sessions, MaxSteps: 50}
}

// Run starts a session with the opening message and answers every question
// from the scenario until the engine terminates.
func (r *Runner) Run(ctx context.Context, sessionID, opening string, scenario *Scenario) (*Report, error) {
	sim := NewSimulator(scenario)

	res, err := r.sessions.Start(ctx, sessionID, opening)
	if err != nil {
		return nil, err
	}
	turns := 0
	for !res.IsComplete {
		if res.Error != "" {
			return nil, fmt.Errorf("step failed: %s", res.Error)
		}
		if turns >= r.MaxSteps {
			return nil, fmt.Errorf("simulation exceeded %d steps without terminating", r.MaxSteps)
		}
		answer := sim.Respond(res.AgentQuestion)
		res, err = r.sessions.Continue(ctx, sessionID, answer)
		if err != nil {
			return nil, err
		}
		turns++
	}

	report := &Report{
		Turns:     turns,
		FinalPlan: res.CurrentPlan,
		Reason:    res.Reason,
		Matched:   map[string]bool{},
	}
	if len(scenario.GroundTruth) > 0 {
		hits := 0
		for slot, want := range scenario.GroundTruth {
			ok := res.CurrentPlan[slot] == want
			report.Matched[slot] = ok
			if ok {
				hits++
			}
		}
		report.Accuracy = float64(hits) / float64(len(scenario.GroundTruth))
	}
	return report, nil
}
