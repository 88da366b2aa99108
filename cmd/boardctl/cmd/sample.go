package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/museboard/museboard/internal/document"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the sample board as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(document.NewSampleBoard(""))
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
}
