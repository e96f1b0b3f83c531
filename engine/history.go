package engine

import "github.com/planagent/planagent/types"

// Trimmer bounds the message history a session keeps when it is persisted.
type Trimmer interface {
	Trim(history []types.Message) []types.Message
}

// KeepLastNTrimmer keeps the last N messages. When N <= 0 nothing is kept.
type KeepLastNTrimmer struct {
	N int
}

func (t KeepLastNTrimmer) Trim(history []types.Message) []types.Message {
	if t.N <= 0 {
		return nil
	}
	if len(history) <= t.N {
		return history
	}
	return history[len(history)-t.N:]
}
