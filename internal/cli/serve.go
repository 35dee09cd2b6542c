package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/querylab/retrievalcfg/internal/config"
	"github.com/querylab/retrievalcfg/internal/limits"
	"github.com/querylab/retrievalcfg/internal/metrics"
	chiTransport "github.com/querylab/retrievalcfg/internal/transport/chi"
	"github.com/querylab/retrievalcfg/internal/version"
)

// EnvAPIKeys holds comma-separated Bearer keys for the admin API.
// Empty disables authentication.
const EnvAPIKeys = "RETRIEVALCFG_API_KEYS"

var (
	serveAddr        string
	serveShutdownSec int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin HTTP API",
	RunE: func(*cobra.Command, []string) error {
		log.Info("Starting retrievalcfg admin API",
			zap.String("version", version.Version),
			zap.String("commit", version.Commit),
			zap.String("addr", serveAddr),
			zap.String("config_path", config.ResolvePath(cfgPath)),
		)

		// Register pipeline metrics explicitly (no init())
		metrics.RegisterPipelineMetrics()
		metrics.RegisterHTTPMetrics()

		loader := config.NewLoader(log)
		resolver := limits.NewResolver(loader, log)
		// Warm the caches so the first request doesn't pay for disk I/O
		resolver.Load("", cfgPath)

		server := chiTransport.NewServer(loader, resolver, apiKeysFromEnv(), log)
		srv := &http.Server{
			Addr:         serveAddr,
			Handler:      server.Handler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal("HTTP server error", zap.Error(err))
			}
		}()

		<-quit
		log.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), time.Duration(serveShutdownSec)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during shutdown", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
		return nil
	},
}

func apiKeysFromEnv() []string {
	raw := os.Getenv(EnvAPIKeys)
	if raw == "" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&serveShutdownSec, "shutdown-timeout", 10, "graceful shutdown timeout in seconds")
	rootCmd.AddCommand(serveCmd)
}
