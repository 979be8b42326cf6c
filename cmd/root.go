package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flickwm/flick/internal/backend"
	"github.com/flickwm/flick/internal/config"
	"github.com/flickwm/flick/internal/logger"
	"github.com/flickwm/flick/internal/server"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	verbose bool
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "flick",
		Short: "Flick - mobile Wayland compositor",
		Long: `Flick is a Wayland compositor for mobile form-factor devices.
It renders through the Android hwcomposer HAL on phone hardware and
falls back to a headless backend for development, with edge-swipe
gestures driving a five-view mobile shell.`,
		SilenceUsage: true,
		RunE:         runCompositor,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file path")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(injectSwipeCmd)
}

// initConfig loads the config file and applies logging flags. Called
// from each command that needs configuration.
func initConfig() error {
	if cfgFile != "" {
		config.SetConfigPath(cfgFile)
	}
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg := config.Get()
	if verbose {
		logger.SetVerbose()
	} else if cfg.Logging.LogLevel != "" {
		logger.SetLevelFromString(cfg.Logging.LogLevel)
	}
	return nil
}

func runCompositor(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}
	cfg := config.Get()

	b, err := backend.Autocreate()
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}

	srv, err := server.New(cfg, b)
	if err != nil {
		return fmt.Errorf("failed to create compositor: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("Received %s, shutting down", sig)
		cancel()
	}()

	logger.Infof("Starting flick %s", Version)
	return srv.Run(ctx)
}
