package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crewwatch/internal/config"
	"crewwatch/internal/logger"
	"crewwatch/internal/realtime"
	"crewwatch/internal/transport"
)

var cfg *config.Config

func main() {
	rootCmd := &cobra.Command{
		Use:           "crewwatch",
		Short:         "Live crew and job tracking for the car wash operations dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(os.Getenv("ENVIRONMENT")); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newHealthCmd(),
		newLocationCmd(),
		newStatusCmd(),
		newStatusHistoryCmd(),
		newJobUpdateCmd(),
		newJobsCmd(),
		newStatsCmd(),
		newSendCmd(),
		newMessagesCmd(),
		newHistoryCmd(),
	)

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		logger.Error("❌ crewwatch failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newAPIClient builds the transport and realtime client from cfg.
func newAPIClient() (*realtime.Client, transport.Connectivity) {
	conn := newConnectivity()

	opts := []transport.Option{
		transport.WithTimeout(cfg.API.RequestTimeout),
		transport.WithConnectivity(conn),
	}
	switch {
	case cfg.API.Token != "":
		opts = append(opts, transport.WithTokenSource(transport.StaticToken(cfg.API.Token)))
	case cfg.API.JWTSecret != "":
		opts = append(opts, transport.WithTokenSource(transport.NewServiceTokenSource(cfg.API.JWTSecret, cfg.API.ServiceID)))
	default:
		logger.Warn("⚠️  no API token or APP_JWT_SECRET configured - requests are unauthenticated")
	}

	return realtime.NewClient(transport.New(cfg.API.BaseURL, opts...)), conn
}

func newConnectivity() transport.Connectivity {
	addr := cfg.API.ConnectivityHost
	if addr == "" {
		derived, err := transport.ProbeAddr(cfg.API.BaseURL)
		if err != nil {
			logger.Warn("⚠️  cannot derive connectivity probe, assuming online", zap.Error(err))
			return transport.AlwaysOnline{}
		}
		addr = derived
	}
	logger.Info("📍 connectivity probe", zap.String("addr", addr))
	return transport.NewProbe(addr)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult prints the envelope and turns a failed one into a command error.
func printResult(v interface{}, res realtime.Result) error {
	if err := printJSON(v); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%s (%s)", res.Error, res.Kind())
	}
	return nil
}

func oneShotTimeout() time.Duration {
	return cfg.API.RequestTimeout + time.Second
}
