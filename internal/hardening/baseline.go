package hardening

import "strings"

// Baseline returns a contract-conformant null pipeline: it rejects empty
// queries and answers everything else with the no-context answer. It has no
// corpus behind it; its job is to demonstrate the retrieval contract and to
// let the harness be exercised without a deployed pipeline. The battery
// supplies its context inline, so the baseline reports context_used.
func Baseline() RetrievalFunc {
	return func(query string) (map[string]any, error) {
		if strings.TrimSpace(query) == "" {
			return map[string]any{"error": "empty query"}, nil
		}
		return map[string]any{
			"answer":       NoContextAnswer,
			"context_used": true,
		}, nil
	}
}
