package main

import (
	"os"

	"occupancy_backend/internal/app"
	"occupancy_backend/internal/config"
	"occupancy_backend/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	outputJSON bool
	envFile    string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "occupancyctl",
	Short: "Occupancy and commission reports for the rental portfolio",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		loaded, err := config.Load(files...)
		if err != nil {
			return err
		}
		cfg = loaded
		utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(limit180Cmd())
	rootCmd.AddCommand(propertyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output JSON")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of .env")
}

// openApp wires the services without the auth stack.
func openApp(snapshotPath string) (*app.App, error) {
	return app.New(cfg, app.Options{SnapshotDBPath: snapshotPath})
}
