package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <board.json>",
	Short: "Render a board JSON file to PDF",
	Long: `Render a board JSON file to a single-page PDF.

Image elements are embedded from data URLs or from the asset directory.

Examples:
  boardctl export board.json
  boardctl export board.json -o moodboard.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		board := document.NewBoard("", "")
		if err := json.Unmarshal(data, board); err != nil {
			return err
		}

		out := exportOutput
		if out == "" {
			out = strings.TrimSuffix(args[0], ".json") + ".pdf"
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := export.WritePDF(f, board, store); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Printf("Exported %d elements to %s\n", board.Len(), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: input name with .pdf)")
	rootCmd.AddCommand(exportCmd)
}
