package plan

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/eino-contrib/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/planagent/planagent/types"
)

const DefaultMaxTurns = 15

// Schema describes which slots exist, their asking order and their types.
// Required slots are asked before optional ones; the order of each list is
// the asking priority. A schema is loaded once and never mutated.
type Schema struct {
	Required []string                  `json:"required_slots"`
	Optional []string                  `json:"optional_slots"`
	Types    map[string]types.SlotType `json:"slot_types"`
	MaxTurns int                       `json:"max_turns"`
}

func DefaultSchema() *Schema {
	return &Schema{
		Required: []string{"destination", "start_date", "duration"},
		Optional: []string{"budget", "companions", "purpose"},
		Types: map[string]types.SlotType{
			"destination": types.SlotString,
			"start_date":  types.SlotDate,
			"duration":    types.SlotString,
			"budget":      types.SlotString,
			"companions":  types.SlotString,
			"purpose":     types.SlotString,
		},
		MaxTurns: DefaultMaxTurns,
	}
}

// ParseSchema decodes a schema payload. Absent fields fall back to the
// defaults, present fields are validated.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := sonic.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	def := DefaultSchema()
	if s.Required == nil {
		s.Required = def.Required
	}
	if s.Optional == nil {
		s.Optional = def.Optional
	}
	if s.Types == nil {
		s.Types = def.Types
	}
	if s.MaxTurns == 0 {
		s.MaxTurns = def.MaxTurns
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSchema reads a schema payload from a JSON file. A missing file yields
// the default schema.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSchema(), nil
		}
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return ParseSchema(data)
}

func (s *Schema) Validate() error {
	if len(s.Required) == 0 {
		return fmt.Errorf("schema has no required slots")
	}
	if s.MaxTurns <= 0 {
		return fmt.Errorf("schema max_turns must be positive, got %d", s.MaxTurns)
	}
	seen := make(map[string]bool, len(s.Required))
	for _, slot := range s.Required {
		if slot == "" {
			return fmt.Errorf("schema contains an empty required slot name")
		}
		if seen[slot] {
			return fmt.Errorf("duplicate required slot %q", slot)
		}
		seen[slot] = true
	}
	for _, slot := range s.Optional {
		if slot == "" {
			return fmt.Errorf("schema contains an empty optional slot name")
		}
		if seen[slot] {
			return fmt.Errorf("slot %q appears in both required and optional lists", slot)
		}
		seen[slot] = true
	}
	return nil
}

// Slots returns all slot names in asking order, required first.
func (s *Schema) Slots() []string {
	out := make([]string, 0, len(s.Required)+len(s.Optional))
	out = append(out, s.Required...)
	out = append(out, s.Optional...)
	return out
}

func (s *Schema) Has(name string) bool {
	for _, slot := range s.Required {
		if slot == name {
			return true
		}
	}
	for _, slot := range s.Optional {
		if slot == name {
			return true
		}
	}
	return false
}

func (s *Schema) SlotInfos() []types.SlotInfo {
	infos := make([]types.SlotInfo, 0, len(s.Required)+len(s.Optional))
	for _, slot := range s.Required {
		infos = append(infos, types.SlotInfo{Name: slot, Type: s.Types[slot], Required: true})
	}
	for _, slot := range s.Optional {
		infos = append(infos, types.SlotInfo{Name: slot, Type: s.Types[slot], Required: false})
	}
	return infos
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidValue reports whether a value satisfies the declared slot type. Slots
// without a declared type always pass.
func (s *Schema) ValidValue(slot, value string) bool {
	switch s.Types[slot] {
	case types.SlotDate:
		return datePattern.MatchString(value)
	case types.SlotNumber:
		_, err := strconv.ParseFloat(value, 64)
		return err == nil
	case types.SlotString:
		return value != ""
	default:
		return true
	}
}

// JSONSchema renders the slot schema as a JSON Schema document for embedding
// in LLM prompts.
func (s *Schema) JSONSchema() (string, error) {
	props := orderedmap.New[string, *jsonschema.Schema]()
	for _, slot := range s.Slots() {
		prop := &jsonschema.Schema{Type: "string"}
		switch s.Types[slot] {
		case types.SlotDate:
			prop.Format = "date"
			prop.Description = "Date in YYYY-MM-DD format"
		case types.SlotNumber:
			prop.Type = "number"
		}
		props.Set(slot, prop)
	}
	doc := &jsonschema.Schema{
		Type:        "object",
		Title:       "여행 계획",
		Description: "대화를 통해 수집하는 여행 계획 슬롯",
		Properties:  props,
		Required:    append([]string(nil), s.Required...),
	}
	data, err := sonic.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal plan schema: %w", err)
	}
	return string(data), nil
}
