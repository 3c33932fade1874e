package wizard

// Data is the accumulated cross-step form data, a superset union of every
// step's fields.
type Data map[string]any

// Clone returns a shallow copy
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ValidateFunc returns the names of the step's invalid fields given the
// accumulated data. It decides validity; messages only decorate.
type ValidateFunc func(data Data) []string

// Step is one page of the wizard with its own required-field gate.
type Step struct {
	ID    string
	Title string

	// Required lists field keys that must be present and non-falsy.
	Required []string

	// Validate overrides the Required check when set.
	Validate ValidateFunc
}

// invalidFields runs the step's gate against the accumulated data
func (s Step) invalidFields(data Data) []string {
	if s.Validate != nil {
		return s.Validate(data)
	}

	var invalid []string
	for _, key := range s.Required {
		if isFalsy(data[key]) {
			invalid = append(invalid, key)
		}
	}
	return invalid
}

// isFalsy mirrors the empty-field semantics of the console's forms:
// absent, empty string, false, zero numbers, and empty collections all
// count as missing.
func isFalsy(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case int:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
