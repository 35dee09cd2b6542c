// Package hardening is a deterministic robustness battery for retrieval
// pipelines: a structural linter for test cases, a fixed set of edge-case
// queries every pipeline must survive, a runner that classifies pipeline
// behavior against those cases, and an independent consistency check over
// the retrieval configuration document. Nothing here touches a network or a
// model; the pipeline under test is supplied by the caller.
package hardening

import (
	"fmt"
	"strings"
)

// Expected-behavior tags carried by edge cases.
const (
	BehaviorGracefulFailure  = "graceful_failure"
	BehaviorTruncateOrHandle = "truncate_or_handle"
	BehaviorNormalProcessing = "normal_processing"
	BehaviorNoContext        = "no_context_response"
	BehaviorDeduplication    = "deduplication"
	BehaviorFilterInvalid    = "filter_invalid"
)

// NoContextAnswer is the literal answer a pipeline must return when the
// retrieved context cannot support the query.
const NoContextAnswer = "Not in context."

// TestCase is a single retrieval test case.
type TestCase struct {
	QueryID          string   `json:"query_id"`
	Query            string   `json:"query"`
	GTAnswer         string   `json:"gt_answer"`
	RetrievedContext []string `json:"retrieved_context"`
	ExpectedBehavior string   `json:"expected_behavior,omitempty"`
}

// Structural bounds for ValidateTestCases.
const (
	minQueryLen   = 5
	maxQueryLen   = 1000
	minAnswerLen  = 10
	minContextLen = 1
	maxContextLen = 50
	minContextDoc = 20
)

// ValidateTestCases lints cases for structural completeness. It returns
// whether all cases are valid plus a human-readable issue list; the caller
// decides whether issues are fatal.
func ValidateTestCases(cases []TestCase) (bool, []string) {
	var issues []string

	for i, c := range cases {
		id := c.QueryID
		if id == "" {
			id = fmt.Sprintf("case_%d", i)
			issues = append(issues, fmt.Sprintf("%s: Missing required field 'query_id'", id))
		}
		if c.Query == "" {
			issues = append(issues, fmt.Sprintf("%s: Missing required field 'query'", id))
		} else if len(c.Query) < minQueryLen || len(c.Query) > maxQueryLen {
			issues = append(issues, fmt.Sprintf(
				"%s: Query length %d outside [%d, %d]", id, len(c.Query), minQueryLen, maxQueryLen))
		}
		if c.GTAnswer == "" {
			issues = append(issues, fmt.Sprintf("%s: Missing required field 'gt_answer'", id))
		} else if len(c.GTAnswer) < minAnswerLen {
			issues = append(issues, fmt.Sprintf(
				"%s: Ground-truth answer shorter than %d characters", id, minAnswerLen))
		}
		if len(c.RetrievedContext) == 0 {
			issues = append(issues, fmt.Sprintf("%s: Missing required field 'retrieved_context'", id))
			continue
		}
		if len(c.RetrievedContext) < minContextLen || len(c.RetrievedContext) > maxContextLen {
			issues = append(issues, fmt.Sprintf(
				"%s: Context has %d items, expected between %d and %d",
				id, len(c.RetrievedContext), minContextLen, maxContextLen))
		}
		for j, doc := range c.RetrievedContext {
			if len(doc) < minContextDoc {
				issues = append(issues, fmt.Sprintf(
					"%s: Context item %d shorter than %d characters", id, j, minContextDoc))
			}
		}
	}

	return len(issues) == 0, issues
}

// GenerateEdgeCases returns the fixed battery of seven synthetic edge cases.
// This battery is the authoritative contract for what a retrieval pipeline
// must survive; the cases are generated fresh on each call and never reused.
func GenerateEdgeCases() []TestCase {
	longQuery := strings.TrimSpace(strings.Repeat("performance optimization of hybrid retrieval pipelines ", 200))

	return []TestCase{
		{
			QueryID:          "edge_empty_query",
			Query:            "",
			GTAnswer:         "",
			RetrievedContext: []string{"Some relevant context about retrieval systems and their components."},
			ExpectedBehavior: BehaviorGracefulFailure,
		},
		{
			QueryID:          "edge_long_query",
			Query:            longQuery,
			GTAnswer:         "The pipeline should truncate or otherwise handle oversized queries.",
			RetrievedContext: []string{"Long queries are truncated to the model context window before retrieval."},
			ExpectedBehavior: BehaviorTruncateOrHandle,
		},
		{
			QueryID:          "edge_special_chars",
			Query:            `What is the @#$% meaning of "RAG" & <retrieval>?`,
			GTAnswer:         "RAG stands for Retrieval-Augmented Generation.",
			RetrievedContext: []string{"RAG (Retrieval-Augmented Generation) combines retrieval with generation."},
			ExpectedBehavior: BehaviorNormalProcessing,
		},
		{
			QueryID:          "edge_unicode",
			Query:            "什么是混合检索? Qu'est-ce que la recherche hybride? 🤖",
			GTAnswer:         "Hybrid retrieval combines lexical and dense signals.",
			RetrievedContext: []string{"Hybrid retrieval fuses BM25 keyword scores with dense vector similarity."},
			ExpectedBehavior: BehaviorNormalProcessing,
		},
		{
			QueryID:          "edge_no_context",
			Query:            "What is the airspeed velocity of an unladen swallow?",
			GTAnswer:         NoContextAnswer,
			RetrievedContext: []string{},
			ExpectedBehavior: BehaviorNoContext,
		},
		{
			QueryID:  "edge_duplicate_context",
			Query:    "How does the reranking stage score candidates?",
			GTAnswer: "The cross-encoder scores each query-document pair directly.",
			RetrievedContext: []string{
				"The cross-encoder scores each query-document pair and keeps the top N.",
				"The cross-encoder scores each query-document pair and keeps the top N.",
				"The cross-encoder scores each query-document pair and keeps the top N.",
			},
			ExpectedBehavior: BehaviorDeduplication,
		},
		{
			QueryID:  "edge_malformed_context",
			Query:    "Which fusion constant does the pipeline use?",
			GTAnswer: "The pipeline uses the standard reciprocal rank fusion constant k=60.",
			RetrievedContext: []string{
				"",
				"   ",
				"Reciprocal rank fusion uses the constant k=60 to dampen rank differences.",
			},
			ExpectedBehavior: BehaviorFilterInvalid,
		},
	}
}
