package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querylab/retrievalcfg/internal/config"
	"github.com/querylab/retrievalcfg/internal/hardening"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the retrieval configuration for internal consistency",
	RunE: func(*cobra.Command, []string) error {
		path := config.ResolvePath(cfgPath)
		report := hardening.ValidatePipelineComponents(path)

		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Println(string(out))

		if report.Error != "" {
			return fmt.Errorf("config %s: %s", path, report.Error)
		}
		if !report.Valid {
			return fmt.Errorf("config %s: %d error(s)", path, len(report.Errors))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
