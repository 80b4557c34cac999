package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"purrple/internal/autopost"
	"purrple/internal/config"
	"purrple/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "purrple",
	Short: "purrple - autonomous persona posting agent",
	Long: `purrple is an autonomous social posting agent with a fixed persona.

On each cycle it decides whether to post, plans a bounded set of tool
steps (web search, optionally image generation), executes them, asks
the model for final post text, and publishes, while respecting the
platform's usage tier, a run cooldown, and a duplicate-post guard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// runCmd executes a single autopost run.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a single autopost run",
	Long: `Runs one full autopost cycle: admission check, plan, tools,
final text, duplicate check, publish. Exits non-zero only on an
unclassified failure; admission and duplicate rejections are normal
outcomes.`,
	RunE: runOnce,
}

// loopCmd runs the scheduler loop.
var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Run the autopost scheduler loop until interrupted",
	RunE:  runLoop,
}

// statusCmd prints the current tier status.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query and print the current usage tier state",
	RunE:  runStatus,
}

// resumeCmd clears the sticky monthly-cap pause.
var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Clear the monthly-cap pause flag (operator action)",
	RunE:  runResume,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(loopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resumeCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	result := app.Service.Run(cmd.Context())
	printJSON(result)

	if !result.Success && result.ErrorKind == autopost.KindRunFailed {
		return fmt.Errorf("run failed: %s", result.Detail)
	}
	return nil
}

func runLoop(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting autopost loop",
		zap.Duration("interval", app.Config.LoopInterval()),
		zap.Duration("cooldown", app.Config.MinInterval()))

	app.Service.Loop(ctx, app.Config.LoopInterval())
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	app.Service.Tracker().Refresh(ctx)
	printJSON(app.Service.Tracker().State())
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	app.Service.Tracker().Resume()
	logger.Info("pause cleared")
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func defaultConfigPath() string {
	return filepath.Join(config.StateDir, "config.yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
