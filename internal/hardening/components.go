package hardening

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/querylab/retrievalcfg/internal/config"
)

// fusionWeightTolerance is how far lambda_lex + lambda_sem may drift from
// 1.0 before the validator flags it.
const fusionWeightTolerance = 0.01

// gateMetrics are the quality-gate metrics checked for soft/hard ordering.
var gateMetrics = []string{"recall_at_20", "f1_score", "faithfulness"}

// ComponentReport is the result of validating the configuration document.
// Warnings are tuning smells (weight sums, threshold ranges, gate ordering);
// errors are blocking inconsistencies. Valid is true iff there are no errors.
type ComponentReport struct {
	Valid           bool              `json:"valid"`
	Warnings        []string          `json:"warnings"`
	Errors          []string          `json:"errors"`
	ComponentStatus map[string]string `json:"component_status"`
	Error           string            `json:"error,omitempty"`
}

// ValidatePipelineComponents loads the configuration document at path and
// checks it for internal consistency. Missing sections never fail the check;
// a file that cannot be read or parsed yields Valid=false with Error set.
func ValidatePipelineComponents(path string) ComponentReport {
	report := ComponentReport{
		Warnings:        []string{},
		Errors:          []string{},
		ComponentStatus: map[string]string{},
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		report.Error = fmt.Sprintf("cannot read config: %v", err)
		return report
	}
	// Decode into a plain map[string]any: yaml.v3 reuses the target map's
	// named type for nested mappings, which would make the map[string]any
	// assertions on sub-sections fail.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		report.Error = fmt.Sprintf("cannot parse config: %v", err)
		return report
	}
	doc := config.Document(raw)

	checkFusion(doc, &report)
	checkPrefilter(doc, &report)
	checkRerank(doc, &report)
	checkQualityGates(doc, &report)

	report.Valid = len(report.Errors) == 0
	return report
}

func checkFusion(doc config.Document, report *ComponentReport) {
	section := doc.Section("fusion")
	if section == nil {
		report.ComponentStatus["fusion"] = "missing"
		report.Warnings = append(report.Warnings, "fusion section missing, defaults in effect")
		return
	}

	fusion := config.FusionSettingsFrom(doc)
	status := "ok"

	sum := fusion.LambdaLex + fusion.LambdaSem
	if math.Abs(sum-1.0) > fusionWeightTolerance {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"fusion weight sum lambda_lex+lambda_sem = %.3f, expected 1.0", sum))
		status = "warning"
	}
	if fusion.K <= 0 {
		report.Errors = append(report.Errors, fmt.Sprintf(
			"fusion.k must be positive, got %d", fusion.K))
		status = "error"
	}

	report.ComponentStatus["fusion"] = status
}

func checkPrefilter(doc config.Document, report *ComponentReport) {
	if doc.Section("prefilter") == nil {
		report.ComponentStatus["prefilter"] = "missing"
		return
	}

	prefilter := config.PrefilterSettingsFrom(doc)
	status := "ok"

	if prefilter.MinBM25Score < 0 || prefilter.MinBM25Score > 1 {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"prefilter.min_bm25_score = %.3f outside nominal range [0, 1]", prefilter.MinBM25Score))
		status = "warning"
	}
	if prefilter.MinVectorScore < 0 || prefilter.MinVectorScore > 1 {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"prefilter.min_vector_score = %.3f outside nominal range [0, 1]", prefilter.MinVectorScore))
		status = "warning"
	}

	report.ComponentStatus["prefilter"] = status
}

func checkRerank(doc config.Document, report *ComponentReport) {
	if doc.Section("rerank") == nil {
		report.ComponentStatus["rerank"] = "missing"
		return
	}

	rerank := config.RerankSettingsFrom(doc)
	status := "ok"

	if rerank.Alpha < 0 || rerank.Alpha > 1 {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"rerank.alpha = %.3f outside nominal range [0, 1]", rerank.Alpha))
		status = "warning"
	}

	report.ComponentStatus["rerank"] = status
}

// checkQualityGates warns when a hard gate is stricter than its soft
// counterpart. Hard gates are the mandatory floor, soft gates the
// aspirational target; hard > soft is a configuration smell, not a
// violation.
func checkQualityGates(doc config.Document, report *ComponentReport) {
	tuning := doc.Section("tuning")
	gates, _ := tuning["quality_gates"].(map[string]any)
	if gates == nil {
		report.ComponentStatus["quality_gates"] = "missing"
		return
	}
	soft, _ := gates["soft"].(map[string]any)
	hard, _ := gates["hard"].(map[string]any)
	if soft == nil || hard == nil {
		report.ComponentStatus["quality_gates"] = "missing"
		return
	}

	status := "ok"
	for _, metric := range gateMetrics {
		softVal, okSoft := soft[metric]
		hardVal, okHard := hard[metric]
		if !okSoft || !okHard {
			continue
		}
		s := config.AsFloat(softVal, 0)
		h := config.AsFloat(hardVal, 0)
		if h > s {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"quality gate %s: hard threshold %.3f exceeds soft threshold %.3f", metric, h, s))
			status = "warning"
		}
	}

	report.ComponentStatus["quality_gates"] = status
}
