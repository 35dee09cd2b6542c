package hardening

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/querylab/retrievalcfg/internal/config"
)

// EdgeCaseValidation records the structural lint of the generated battery.
// Several edge cases violate the lint rules on purpose (empty query, empty
// context), so issues here are informational.
type EdgeCaseValidation struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ComprehensiveReport is the merged output of a full harness run.
type ComprehensiveReport struct {
	RunID      string             `json:"run_id"`
	Timestamp  time.Time          `json:"timestamp"`
	ConfigPath string             `json:"config_path"`
	EdgeCases  EdgeCaseValidation `json:"edge_case_validation"`
	Robustness RobustnessReport   `json:"robustness"`
	Components ComponentReport    `json:"components"`
}

// RunComprehensiveTests runs the full battery: generates edge cases, lints
// them, exercises fn against them, validates the configuration document
// (configPath may be empty; resolution falls back to RETRIEVAL_CONFIG_PATH
// and the built-in default), writes the merged JSON report to outputPath,
// and prints a summary to stdout. This is the entry point a CI pipeline
// invokes.
func RunComprehensiveTests(fn RetrievalFunc, configPath, outputPath string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	cases := GenerateEdgeCases()
	valid, issues := ValidateTestCases(cases)
	if !valid {
		logger.Info("Edge case battery carries intentional structural violations",
			zap.Int("issues", len(issues)))
	}
	if issues == nil {
		issues = []string{}
	}

	resolvedPath := config.ResolvePath(configPath)

	report := ComprehensiveReport{
		RunID:      uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		ConfigPath: resolvedPath,
		EdgeCases:  EdgeCaseValidation{Valid: valid, Issues: issues},
		Robustness: RunRobustness(fn, cases),
		Components: ValidatePipelineComponents(resolvedPath),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printSummary(report, outputPath)
	return nil
}

func printSummary(report ComprehensiveReport, outputPath string) {
	fmt.Printf("Hardening run %s\n", report.RunID)
	fmt.Printf("  Robustness: %d passed, %d failed, %d errored (of %d)\n",
		report.Robustness.Passed, report.Robustness.Failed,
		report.Robustness.Errors, report.Robustness.Total)
	for _, c := range report.Robustness.Cases {
		if c.Status == StatusPassed {
			continue
		}
		fmt.Printf("    %-24s %-8s %s\n", c.QueryID, c.Status, c.Reason)
	}

	fmt.Printf("  Config %s: valid=%v, %d warnings, %d errors\n",
		report.ConfigPath, report.Components.Valid,
		len(report.Components.Warnings), len(report.Components.Errors))
	for _, w := range report.Components.Warnings {
		fmt.Printf("    warning: %s\n", w)
	}
	for _, e := range report.Components.Errors {
		fmt.Printf("    error: %s\n", e)
	}

	fmt.Printf("  Report written to %s\n", outputPath)
}
