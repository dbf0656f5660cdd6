package main

import (
	"fmt"

	"smartstudy/internal/app"
	"smartstudy/internal/config"
	"smartstudy/internal/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "quizctl",
	Short:         "Generate quizzes from study material",
	Long:          "quizctl runs the SmartStudy quiz generator from the command line. Progress goes to stderr, results to stdout.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides LOG_LEVEL and config)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(extractCmd)
}

// loadServices reads configuration, sets up logging and wires the pipeline.
func loadServices(cmd *cobra.Command) (*app.Services, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logger.Level = level
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return nil, nil, err
	}
	services, err := app.New(cfg, logger.Get())
	if err != nil {
		return nil, nil, err
	}
	return services, cfg, nil
}
