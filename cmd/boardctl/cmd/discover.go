package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/museboard/museboard/internal/discovery"
)

var discoverTimeout time.Duration

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find board servers on the local network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := discovery.Browse(context.Background(), discoverTimeout)
		if err != nil {
			return err
		}
		if len(services) == 0 {
			fmt.Println("No board servers found")
			return nil
		}
		for _, s := range services {
			fmt.Printf("%s\t%s\t%s\n", s.Instance, s.Addr, strings.Join(s.Info, " "))
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 3*time.Second, "how long to listen for answers")
	rootCmd.AddCommand(discoverCmd)
}
