package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/museboard/museboard/internal/share"
)

var (
	qrOutput string
	qrSize   int
)

var qrCmd = &cobra.Command{
	Use:   "qr <url>",
	Short: "Render a board link as a QR code PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		png, err := share.QRCode(args[0], qrSize)
		if err != nil {
			return err
		}
		if err := os.WriteFile(qrOutput, png, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", qrOutput)
		return nil
	},
}

func init() {
	qrCmd.Flags().StringVarP(&qrOutput, "output", "o", "board-qr.png", "output PNG file")
	qrCmd.Flags().IntVar(&qrSize, "size", share.DefaultQRSize, "image size in pixels")
	rootCmd.AddCommand(qrCmd)
}
