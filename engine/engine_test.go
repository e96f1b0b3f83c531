package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/planagent/planagent/extract"
	"github.com/planagent/planagent/plan"
	"github.com/planagent/planagent/question"
	"github.com/planagent/planagent/types"
)

type stubExtractor struct {
	slots map[string]string
	err   error
}

func (s stubExtractor) Extract(ctx context.Context, req *extract.Request) (map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.slots == nil {
		return map[string]string{}, nil
	}
	return s.slots, nil
}

func newRuleSessions(t *testing.T) *Sessions {
	t.Helper()
	schema := plan.DefaultSchema()
	eng, err := New(schema, extract.NewRuleExtractor(), question.NewRuleGenerator(schema))
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	return NewSessions(eng)
}

func TestEngineConstructionValidatesSchema(t *testing.T) {
	t.Parallel()
	schema := plan.DefaultSchema()
	bad := &plan.Schema{
		Required: []string{"destination"},
		Optional: []string{"destination"},
		MaxTurns: 15,
	}
	if _, err := New(bad, extract.NewRuleExtractor(), question.NewRuleGenerator(schema)); err == nil {
		t.Error("invalid schema must prevent engine creation")
	}
	if _, err := New(nil, extract.NewRuleExtractor(), question.NewRuleGenerator(schema)); err == nil {
		t.Error("nil schema must prevent engine creation")
	}
	if _, err := New(schema, nil, question.NewRuleGenerator(schema)); err == nil {
		t.Error("missing extractor must prevent engine creation")
	}
}

func TestStartAsksFirstRequiredSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sessions := newRuleSessions(t)

	res, err := sessions.Start(ctx, "s1", "여행 계획을 도와주세요.")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if res.AgentQuestion != "어디로 여행을 가고 싶으신가요?" {
		t.Errorf("first question = %q, want the destination question", res.AgentQuestion)
	}
	if len(res.CurrentPlan) != 0 {
		t.Errorf("plan should be empty after greeting, got %v", res.CurrentPlan)
	}
	if res.IsComplete {
		t.Error("conversation should not be complete after start")
	}

	st, err := sessions.State(ctx, "s1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if st.TurnCount != 0 {
		t.Errorf("opening message must not count as a turn, got %d", st.TurnCount)
	}
	if len(st.Messages) != 2 || st.Messages[0].Role != types.RoleUser || st.Messages[1].Role != types.RoleAssistant {
		t.Errorf("history should be [user, assistant], got %v", st.Messages)
	}
}

func TestContinueExtractsAndAdvances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sessions := newRuleSessions(t)

	if _, err := sessions.Start(ctx, "s1", "여행 계획을 도와주세요."); err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := sessions.Continue(ctx, "s1", "제주도로 가고 싶어요")
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if !reflect.DeepEqual(res.CurrentPlan, plan.Plan{"destination": "제주도"}) {
		t.Errorf("plan = %v, want destination 제주도", res.CurrentPlan)
	}
	if res.AgentQuestion != "언제 출발하실 예정인가요?" {
		t.Errorf("next question = %q, want the start_date question", res.AgentQuestion)
	}
	if res.UserResponse != "제주도로 가고 싶어요" {
		t.Errorf("user response should be echoed, got %q", res.UserResponse)
	}
}

func TestFullConversationCompletes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sessions := newRuleSessions(t)

	if _, err := sessions.Start(ctx, "s1", "여행 계획을 도와주세요."); err != nil {
		t.Fatalf("start: %v", err)
	}
	answers := []string{
		"제주도로 가고 싶어요",
		"2026-03-15에 출발할 거예요",
		"3박 4일이요",
		"예산은 50만원입니다",
		"친구랑 가요",
		"휴양하러 갑니다",
	}
	var res *StepResult
	var err error
	for i, answer := range answers {
		res, err = sessions.Continue(ctx, "s1", answer)
		if err != nil {
			t.Fatalf("continue %d: %v", i+1, err)
		}
		if i < len(answers)-1 && res.IsComplete {
			t.Fatalf("conversation completed early at turn %d: %v", i+1, res.CurrentPlan)
		}
	}

	if !res.IsComplete {
		t.Fatalf("conversation should be complete, plan: %v", res.CurrentPlan)
	}
	if res.Reason != types.ReasonPlanFilled {
		t.Errorf("reason = %q, want %q", res.Reason, types.ReasonPlanFilled)
	}
	if res.AgentQuestion != "" {
		t.Errorf("terminal step must not produce a question, got %q", res.AgentQuestion)
	}
	want := plan.Plan{
		"destination": "제주도",
		"start_date":  "2026-03-15",
		"duration":    "3박 4일",
		"budget":      "50만원",
		"companions":  "친구",
		"purpose":     "휴양",
	}
	if !reflect.DeepEqual(res.CurrentPlan, want) {
		t.Errorf("final plan = %v, want %v", res.CurrentPlan, want)
	}
}

func TestTurnOverflowTerminates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sessions := newRuleSessions(t)

	if _, err := sessions.Start(ctx, "s1", "여행 계획을 도와주세요."); err != nil {
		t.Fatalf("start: %v", err)
	}
	maxTurns := plan.DefaultSchema().MaxTurns
	var res *StepResult
	var err error
	for i := 1; i <= maxTurns+1; i++ {
		res, err = sessions.Continue(ctx, "s1", "글쎄요")
		if err != nil {
			t.Fatalf("continue %d: %v", i, err)
		}
		if i <= maxTurns && res.IsComplete {
			t.Fatalf("terminated early at turn %d", i)
		}
	}
	if !res.IsComplete {
		t.Fatal("conversation should terminate once the turn budget is exhausted")
	}
	if res.Reason != types.ReasonTurnLimit {
		t.Errorf("reason = %q, want %q", res.Reason, types.ReasonTurnLimit)
	}
	if res.AgentQuestion != "" {
		t.Errorf("terminal step must not produce a question, got %q", res.AgentQuestion)
	}
	if len(res.CurrentPlan) != 0 {
		t.Errorf("nothing was parseable, plan should be empty: %v", res.CurrentPlan)
	}
}

func TestContinueWithoutStart(t *testing.T) {
	t.Parallel()
	sessions := newRuleSessions(t)
	_, err := sessions.Continue(context.Background(), "nobody", "제주도요")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("continue without start should report ErrSessionNotFound, got %v", err)
	}
}

func TestTurnCountIncrementsOncePerContinue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sessions := newRuleSessions(t)

	if _, err := sessions.Start(ctx, "s1", "여행 계획을 도와주세요."); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if _, err := sessions.Continue(ctx, "s1", "글쎄요"); err != nil {
			t.Fatalf("continue: %v", err)
		}
		st, err := sessions.State(ctx, "s1")
		if err != nil {
			t.Fatalf("state: %v", err)
		}
		if st.TurnCount != i {
			t.Errorf("turn count after continue %d = %d", i, st.TurnCount)
		}
	}
}

func TestStrategyErrorLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	schema := plan.DefaultSchema()
	failing := &toggleExtractor{err: fmt.Errorf("backend unreachable")}
	eng, err := New(schema, failing, question.NewRuleGenerator(schema))
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	sessions := NewSessions(eng)

	if _, err := sessions.Start(ctx, "s1", "여행 계획을 도와주세요."); err != nil {
		t.Fatalf("start: %v", err)
	}
	before, err := sessions.State(ctx, "s1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}

	failing.fail = true
	res, err := sessions.Continue(ctx, "s1", "제주도로 가고 싶어요")
	if err != nil {
		t.Fatalf("strategy failures must be reported as data, got error: %v", err)
	}
	if res.Error == "" {
		t.Fatal("StepResult.Error should carry the strategy failure")
	}
	if res.IsComplete {
		t.Error("failed step must not complete the conversation")
	}

	after, err := sessions.State(ctx, "s1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("failed step must not commit state:\nbefore %+v\nafter  %+v", before, after)
	}

	// The same turn can be retried once the backend recovers.
	failing.fail = false
	res, err = sessions.Continue(ctx, "s1", "제주도로 가고 싶어요")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Error != "" {
		t.Fatalf("retry should succeed, got %q", res.Error)
	}
	st, _ := sessions.State(ctx, "s1")
	if st.TurnCount != 1 {
		t.Errorf("only the successful continue counts, turn count = %d", st.TurnCount)
	}
}

type toggleExtractor struct {
	fail bool
	err  error
}

func (s *toggleExtractor) Extract(ctx context.Context, req *extract.Request) (map[string]string, error) {
	if s.fail {
		return nil, s.err
	}
	return map[string]string{"destination": "제주도"}, nil
}

func TestInvalidTypedValueIsDropped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	schema := plan.DefaultSchema()
	eng, err := New(schema, stubExtractor{slots: map[string]string{
		"destination": "제주도",
		"start_date":  "3월 중순",
	}}, question.NewRuleGenerator(schema))
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	sessions := NewSessions(eng)

	if _, err := sessions.Start(ctx, "s1", "시작"); err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := sessions.Continue(ctx, "s1", "제주도, 3월 중순쯤이요")
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if res.CurrentPlan["destination"] != "제주도" {
		t.Errorf("valid value should merge: %v", res.CurrentPlan)
	}
	if _, ok := res.CurrentPlan["start_date"]; ok {
		t.Errorf("value failing date validation must be dropped: %v", res.CurrentPlan)
	}
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sessions := newRuleSessions(t)

	if _, err := sessions.Start(ctx, "s1", "여행 계획을 도와주세요."); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := sessions.Continue(ctx, "s1", "제주도로 가고 싶어요"); err != nil {
		t.Fatalf("continue: %v", err)
	}

	snapshot, err := sessions.Snapshot(ctx, "s1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	before, _ := sessions.State(ctx, "s1")

	if err := sessions.Reset(ctx, "s1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := sessions.State(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("reset should discard the session, got %v", err)
	}

	if err := sessions.Restore(ctx, "s1", snapshot); err != nil {
		t.Fatalf("restore: %v", err)
	}
	after, err := sessions.State(ctx, "s1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("restored state differs:\nbefore %+v\nafter  %+v", before, after)
	}

	// The restored conversation resumes where it left off.
	res, err := sessions.Continue(ctx, "s1", "2026-03-15에 출발해요")
	if err != nil {
		t.Fatalf("continue after restore: %v", err)
	}
	if res.CurrentPlan["destination"] != "제주도" || res.CurrentPlan["start_date"] != "2026-03-15" {
		t.Errorf("plan after restore = %v", res.CurrentPlan)
	}
}

func TestIndependentSessionsDoNotShareState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sessions := newRuleSessions(t)

	if _, err := sessions.Start(ctx, "a", "여행 계획을 도와주세요."); err != nil {
		t.Fatalf("start a: %v", err)
	}
	if _, err := sessions.Start(ctx, "b", "여행 계획을 도와주세요."); err != nil {
		t.Fatalf("start b: %v", err)
	}
	if _, err := sessions.Continue(ctx, "a", "부산에 가고 싶어요"); err != nil {
		t.Fatalf("continue a: %v", err)
	}

	stB, err := sessions.State(ctx, "b")
	if err != nil {
		t.Fatalf("state b: %v", err)
	}
	if len(stB.Plan) != 0 || stB.TurnCount != 0 {
		t.Errorf("session b must be untouched by session a, got %+v", stB)
	}
}
