package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/querylab/retrievalcfg/internal/hardening"
)

var (
	hardenOutput   string
	hardenEndpoint string
	hardenTimeout  time.Duration
)

var hardenCmd = &cobra.Command{
	Use:   "harden",
	Short: "Run the comprehensive hardening battery",
	Long: `Runs the edge-case battery and configuration validation, writing a JSON
report. With --endpoint, each query is POSTed to a deployed retrieval
service ({"query": ...} in, a JSON object with at least "answer" out);
without it, a built-in baseline pipeline exercises the harness itself.`,
	RunE: func(*cobra.Command, []string) error {
		fn := hardening.Baseline()
		if hardenEndpoint != "" {
			fn = endpointFunc(hardenEndpoint, hardenTimeout)
		}
		return hardening.RunComprehensiveTests(fn, cfgPath, hardenOutput, log)
	},
}

// endpointFunc adapts an HTTP retrieval service into a RetrievalFunc. The
// client timeout is the only guard against a hung pipeline; the harness
// itself imposes none.
func endpointFunc(url string, timeout time.Duration) hardening.RetrievalFunc {
	client := &http.Client{Timeout: timeout}

	return func(query string) (map[string]any, error) {
		body, err := json.Marshal(map[string]string{"query": query})
		if err != nil {
			return nil, fmt.Errorf("marshal query: %w", err)
		}

		resp, err := client.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("post query: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("endpoint returned %s", resp.Status)
		}

		var out map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return out, nil
	}
}

func init() {
	hardenCmd.Flags().StringVarP(&hardenOutput, "output", "o", "hardening_report.json",
		"report output path")
	hardenCmd.Flags().StringVar(&hardenEndpoint, "endpoint", "",
		"retrieval service URL to test (default: built-in baseline)")
	hardenCmd.Flags().DurationVar(&hardenTimeout, "timeout", 30*time.Second,
		"per-query timeout for --endpoint")
	rootCmd.AddCommand(hardenCmd)
}
