package batch

import (
	"encoding/json"
	"fmt"
)

// Result holds the outcome of an operation against a single target.
type Result struct {
	Target string `json:"target"`
	Status string `json:"status"` // "success" or "error"
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Summary aggregates per-target results for a batch operation.
type Summary struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Results   []Result `json:"results"`
}

// ParseStringOrArray normalizes a tool argument that may be either a single
// string or an array of strings into a slice of targets.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var targets []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		// Some MCP clients serialize array arguments as a JSON string.
		if v[0] == '[' {
			var decoded []string
			if err := json.Unmarshal([]byte(v), &decoded); err == nil {
				if len(decoded) == 0 {
					return nil, fmt.Errorf("%s cannot be empty", paramName)
				}
				for i, str := range decoded {
					if str == "" {
						return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
					}
				}
				return decoded, nil
			}
		}
		targets = []string{v}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			targets = append(targets, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return targets, nil
}

// ProcessBatch runs fn once per target and collects the outcomes in order.
// A failing target does not stop the remaining ones.
func ProcessBatch(targets []string, fn func(target string) (string, error)) []Result {
	results := make([]Result, 0, len(targets))

	for _, target := range targets {
		r := Result{Target: target}
		res, err := fn(target)
		if err != nil {
			r.Status = "error"
			r.Error = err.Error()
		} else {
			r.Status = "success"
			r.Result = res
		}
		results = append(results, r)
	}

	return results
}

// FormatResults renders per-target results as an indented JSON summary.
func FormatResults(results []Result) string {
	s := Summary{
		Total:   len(results),
		Results: results,
	}

	for _, r := range results {
		if r.Status == "success" {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}

	jsonBytes, _ := json.MarshalIndent(s, "", "  ")
	return string(jsonBytes)
}
