package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	specFile   string
	debugMode  bool
	submitWait bool
)

var rootCmd = &cobra.Command{
	Use:   "simsweep",
	Short: "Parameter sweep engine for numerical simulation campaigns",
	Long:  "simsweep walks a hierarchy of cases, scenarios and mesh refinement levels, dispatching only the angle-of-attack conditions that have not already completed successfully",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&specFile, "spec", "s", "sweep.yaml", "Sweep spec file path")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug output")

	registerRunCommand(rootCmd)
	registerValidateCommand(rootCmd)
	registerSubmitCommand(rootCmd)
	registerReportCommand(rootCmd)
}

// newLogger builds the engine logger. Progress output stays on plain stdout;
// the structured log carries dispatch and reconciliation detail.
func newLogger() (*zap.Logger, error) {
	if debugMode {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
