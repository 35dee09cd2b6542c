package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querylab/retrievalcfg/internal/config"
	"github.com/querylab/retrievalcfg/internal/limits"
)

var limitsTag string

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Resolve and print the pipeline limits",
	RunE: func(*cobra.Command, []string) error {
		loader := config.NewLoader(log)
		resolver := limits.NewResolver(loader, log)

		lim := resolver.Load(limitsTag, cfgPath)
		out, err := json.MarshalIndent(lim, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal limits: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	limitsCmd.Flags().StringVar(&limitsTag, "tag", "", "pipeline tag for the limits cache key")
	rootCmd.AddCommand(limitsCmd)
}
