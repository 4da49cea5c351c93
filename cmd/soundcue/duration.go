package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var durationCmd = &cobra.Command{
	Use:   "duration <url>",
	Short: "Report the playable length of a sound URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		probe := newProbe()

		d, err := probe.Duration(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to probe duration: %w", err)
		}

		fmt.Printf("%dms\n", d.Milliseconds())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(durationCmd)
}
