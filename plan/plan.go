package plan

// Plan is the travel plan under construction: a mapping from slot name to
// collected value. A slot is filled iff it is present with a non-empty value.
type Plan map[string]string

func New() Plan {
	return Plan{}
}

func (p Plan) Filled(slot string) bool {
	return p[slot] != ""
}

func (p Plan) Clone() Plan {
	out := make(Plan, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// IsComplete reports whether every required slot is filled.
func (p Plan) IsComplete(s *Schema) bool {
	return len(p.MissingRequired(s)) == 0
}

// MissingRequired returns the unfilled required slots in schema order.
func (p Plan) MissingRequired(s *Schema) []string {
	var missing []string
	for _, slot := range s.Required {
		if !p.Filled(slot) {
			missing = append(missing, slot)
		}
	}
	return missing
}

// MissingOptional returns the unfilled optional slots in schema order.
func (p Plan) MissingOptional(s *Schema) []string {
	var missing []string
	for _, slot := range s.Optional {
		if !p.Filled(slot) {
			missing = append(missing, slot)
		}
	}
	return missing
}

// NextSlot returns the next slot to collect: the first missing required slot,
// then the first missing optional one. ok is false when the plan is fully
// complete.
func (p Plan) NextSlot(s *Schema) (slot string, ok bool) {
	if missing := p.MissingRequired(s); len(missing) > 0 {
		return missing[0], true
	}
	if missing := p.MissingOptional(s); len(missing) > 0 {
		return missing[0], true
	}
	return "", false
}

// Merge returns a copy of p with every non-empty value from extracted set.
// Empty values are dropped so a filled slot can never regress to empty.
// Unknown slot names are stored as-is; completeness only ever consults
// schema slots. Merge never mutates p.
func Merge(p Plan, extracted map[string]string) Plan {
	ops := opsFromExtraction(p, extracted)
	if len(ops) == 0 {
		return p.Clone()
	}
	merged, err := applyOps(p, ops)
	if err != nil {
		// The ops are all flat add/replace, so this should not happen;
		// fall back to a direct copy rather than losing the turn.
		merged = p.Clone()
		for k, v := range extracted {
			if v != "" {
				merged[k] = v
			}
		}
	}
	return merged
}
