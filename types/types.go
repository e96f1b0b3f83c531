package types

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation history. Index 0 is always the
// opening user message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type SlotType string

const (
	SlotString SlotType = "string"
	SlotDate   SlotType = "date"
	SlotNumber SlotType = "number"
)

// CompletionReason records why a conversation terminated.
type CompletionReason string

const (
	ReasonNone       CompletionReason = ""
	ReasonPlanFilled CompletionReason = "plan_filled"
	ReasonTurnLimit  CompletionReason = "turn_limit"
)

type SlotInfo struct {
	Name        string   `json:"name"`
	Type        SlotType `json:"type,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Required    bool     `json:"required"`
}
