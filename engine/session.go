package engine

import (
	"context"
	"fmt"

	"github.com/planagent/planagent/plan"
	"github.com/planagent/planagent/types"
)

type sessionsOptions struct {
	cache   Cache[*State]
	trimmer Trimmer
}

type SessionsOption func(*sessionsOptions)

// WithCache replaces the in-memory backend, e.g. with a process-external
// store.
func WithCache(cache Cache[*State]) SessionsOption {
	return func(o *sessionsOptions) {
		o.cache = cache
	}
}

// WithTrimmer bounds the persisted message history of every session.
func WithTrimmer(trimmer Trimmer) SessionsOption {
	return func(o *sessionsOptions) {
		o.trimmer = trimmer
	}
}

// Sessions exposes the engine's step function per session identifier. Turns
// within one session are strictly sequential; independent sessions may run
// concurrently because each owns its state.
type Sessions struct {
	engine  *Engine
	states  Store[*State]
	trimmer Trimmer
}

func NewSessions(engine *Engine, opts ...SessionsOption) *Sessions {
	options := sessionsOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.cache == nil {
		options.cache = NewMemoryCache[*State]()
	}
	return &Sessions{
		engine:  engine,
		states:  NewStore(options.cache, "engine:state"),
		trimmer: options.trimmer,
	}
}

// Start creates a fresh conversation state for the session and runs the
// first absorb→decide→produce cycle on the opening message. The opening
// message does not count against the turn budget. Starting an existing
// session replaces it.
func (s *Sessions) Start(ctx context.Context, sessionID, initialMessage string) (*StepResult, error) {
	st := NewState()
	st.Append(types.RoleUser, initialMessage)
	res, err := s.engine.step(ctx, st)
	if err != nil {
		// Nothing saved: a retried Start sees a clean slate.
		return &StepResult{CurrentPlan: plan.New(), Error: err.Error()}, nil
	}
	if err := s.save(ctx, sessionID, st); err != nil {
		return nil, err
	}
	return res, nil
}

// Continue appends one user response to the session, counts the turn, and
// runs one cycle. A strategy failure is reported in StepResult.Error with
// the stored state untouched, so the caller may retry the same turn.
func (s *Sessions) Continue(ctx context.Context, sessionID, userResponse string) (*StepResult, error) {
	st, ok, err := s.states.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", sessionID, err)
	}
	if !ok {
		return nil, fmt.Errorf("continue session %q: %w", sessionID, ErrSessionNotFound)
	}

	work := st.Clone()
	work.Append(types.RoleUser, userResponse)
	work.TurnCount++

	res, err := s.engine.step(ctx, work)
	if err != nil {
		return &StepResult{
			UserResponse: userResponse,
			CurrentPlan:  st.Plan.Clone(),
			Error:        err.Error(),
		}, nil
	}
	if err := s.save(ctx, sessionID, work); err != nil {
		return nil, err
	}
	res.UserResponse = userResponse
	return res, nil
}

// State returns a copy of the current conversation state.
func (s *Sessions) State(ctx context.Context, sessionID string) (*State, error) {
	st, ok, err := s.states.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", sessionID, err)
	}
	if !ok {
		return nil, fmt.Errorf("session %q: %w", sessionID, ErrSessionNotFound)
	}
	return st.Clone(), nil
}

// Snapshot serializes the session state for external checkpointing.
func (s *Sessions) Snapshot(ctx context.Context, sessionID string) ([]byte, error) {
	st, err := s.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return st.Snapshot()
}

// Restore installs a snapshot under the session identifier, replacing any
// existing state.
func (s *Sessions) Restore(ctx context.Context, sessionID string, snapshot []byte) error {
	st, err := RestoreState(snapshot)
	if err != nil {
		return err
	}
	return s.save(ctx, sessionID, st)
}

// Reset discards the session state.
func (s *Sessions) Reset(ctx context.Context, sessionID string) error {
	return s.states.Del(ctx, sessionID)
}

func (s *Sessions) save(ctx context.Context, sessionID string, st *State) error {
	if s.trimmer != nil {
		st.Messages = s.trimmer.Trim(st.Messages)
	}
	if err := s.states.Set(ctx, sessionID, st); err != nil {
		return fmt.Errorf("save session %q: %w", sessionID, err)
	}
	return nil
}
