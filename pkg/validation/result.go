package validation

// Result is the outcome of validating one field. Message is empty when Valid.
type Result struct {
	Field   string `json:"field"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Report gathers results for a full validation pass in declared field order.
type Report struct {
	Results      []Result `json:"results"`
	Valid        bool     `json:"valid"`
	FirstInvalid string   `json:"firstInvalid,omitempty"`
}

// Invalid returns the failing results in declared order.
func (r Report) Invalid() []Result {
	var out []Result
	for _, result := range r.Results {
		if !result.Valid {
			out = append(out, result)
		}
	}
	return out
}

// Errors returns messages keyed by field name, the shape used by renderers
// and JSON responses.
func (r Report) Errors() map[string][]string {
	var out map[string][]string
	for _, result := range r.Results {
		if result.Valid {
			continue
		}
		if out == nil {
			out = make(map[string][]string)
		}
		out[result.Field] = append(out[result.Field], result.Message)
	}
	return out
}

// Override replaces the results for the fields named in results, keeping the
// declared order, and recomputes Valid and FirstInvalid.
func (r Report) Override(results ...Result) Report {
	replaced := make(map[string]Result, len(results))
	for _, result := range results {
		replaced[result.Field] = result
	}
	out := Report{Valid: true, Results: make([]Result, 0, len(r.Results))}
	for _, result := range r.Results {
		if next, ok := replaced[result.Field]; ok {
			result = next
		}
		out.Results = append(out.Results, result)
		if !result.Valid && out.Valid {
			out.Valid = false
			out.FirstInvalid = result.Field
		}
	}
	return out
}
