package plan

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

type operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// opsFromExtraction turns an extraction result into RFC6902 operations
// against the plan. Empty values produce no op, which is what keeps merges
// from regressing a filled slot.
func opsFromExtraction(p Plan, extracted map[string]string) []operation {
	ops := make([]operation, 0, len(extracted))
	for slot, value := range extracted {
		if value == "" {
			continue
		}
		op := "add"
		if _, exists := p[slot]; exists {
			op = "replace"
		}
		ops = append(ops, operation{Op: op, Path: "/" + escapeJSONPointer(slot), Value: value})
	}
	return ops
}

func applyOps(p Plan, ops []operation) (Plan, error) {
	currentJSON, err := sonic.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	patchJSON, err := sonic.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("marshal patch operations: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}
	mergedJSON, err := patch.Apply(currentJSON)
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}
	var merged Plan
	if err := sonic.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, fmt.Errorf("unmarshal merged plan: %w", err)
	}
	return merged, nil
}

func escapeJSONPointer(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}
