package extract

import (
	"context"

	"github.com/planagent/planagent/plan"
	"github.com/planagent/planagent/types"
)

// Request is one extraction call: the latest user utterance plus everything
// known about the conversation so far.
type Request struct {
	UserText string
	Plan     plan.Plan

	// Question is the assistant question the user was answering, empty on
	// the opening message.
	Question string

	PlanSchema   string
	MissingSlots []types.SlotInfo
}

// Extractor maps free text to newly known slot values. Implementations must
// return an empty (never nil) map when nothing is extracted, and must not
// fail for ordinary "no info" input.
type Extractor interface {
	Extract(ctx context.Context, req *Request) (map[string]string, error)
}

// FailbackExtractor tries each extractor in order and returns the first
// successful result.
type FailbackExtractor struct {
	extractors []Extractor
}

func NewFailbackExtractor(extractors ...Extractor) *FailbackExtractor {
	return &FailbackExtractor{extractors: extractors}
}

func (e *FailbackExtractor) Extract(ctx context.Context, req *Request) (map[string]string, error) {
	var lastErr error
	for _, extractor := range e.extractors {
		slots, err := extractor.Extract(ctx, req)
		if err == nil {
			return slots, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
