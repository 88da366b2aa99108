package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/museboard/museboard/internal/asset"
	"github.com/museboard/museboard/internal/config"
)

var (
	assetDir string
	store    *asset.Store
)

var rootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "Work with museboard boards from the command line",
	Long: `boardctl exports board JSON files, renders share QR codes and finds
board servers on the local network.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		s, err := asset.NewStore(assetDir)
		if err != nil {
			return fmt.Errorf("open asset store: %w", err)
		}
		store = s
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDir := "./data/assets"
	if cfg, err := config.Load(".env"); err == nil {
		defaultDir = cfg.AssetDir
	}
	rootCmd.PersistentFlags().StringVar(&assetDir, "assets", defaultDir, "directory of uploaded and generated assets")
}
