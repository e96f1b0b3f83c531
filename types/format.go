package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// PromptContext carries everything an LLM strategy needs to know about the
// current conversation when building its prompt.
type PromptContext struct {
	Plan         map[string]string
	PlanSchema   string
	Question     string
	Answer       string
	MissingSlots []SlotInfo
}

func formatMissingSlotsSection(slots []SlotInfo) string {
	if len(slots) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Missing slots:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Slot", "Type", "Required")
	for _, slot := range slots {
		_ = table.Append(slot.Name, string(slot.Type), fmt.Sprintf("%t", slot.Required))
	}
	_ = table.Render()
	return buf.String()
}

// FormatPromptContext renders the context as the user message shared by the
// LLM extraction and question strategies.
func FormatPromptContext(pc *PromptContext) (string, error) {
	planJSON, err := sonic.Marshal(pc.Plan)
	if err != nil {
		return "", err
	}
	sections := []string{
		fmt.Sprintf("# Current Date: \n %s", time.Now().Format(time.RFC3339)),
		fmt.Sprintf("# Collected plan JSON:\n```json\n%s\n```", string(planJSON)),
	}
	if pc.PlanSchema != "" {
		sections = append(sections, fmt.Sprintf("# Plan schema JSON:\n```json\n%s\n```", pc.PlanSchema))
	}
	if pc.Question != "" || pc.Answer != "" {
		sections = append(sections, "# Latest Dialogue:")
		if pc.Question != "" {
			sections = append(sections, fmt.Sprintf("## Assistant Question:\n%s", pc.Question))
		}
		if pc.Answer != "" {
			sections = append(sections, fmt.Sprintf("## User Answer:\n%s", pc.Answer))
		}
	}
	if s := formatMissingSlotsSection(pc.MissingSlots); s != "" {
		sections = append(sections, s)
	}
	return strings.Join(sections, "\n\n"), nil
}
