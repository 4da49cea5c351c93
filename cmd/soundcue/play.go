package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mekkanized/soundcue/internal/sound"
)

var playCmd = &cobra.Command{
	Use:   "play <event>",
	Short: "Play the sound bound to an event category",
	Long: fmt.Sprintf(`Play the sound configured for an event category, subject to the
usual mute and volume policy.

Event categories: %s`, strings.Join(eventNames(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := sound.ParseEvent(args[0])
		if err != nil {
			return err
		}

		svc, err := newService()
		if err != nil {
			return err
		}

		pb, err := svc.PlayEvent(cmd.Context(), ev)
		if err != nil {
			return fmt.Errorf("failed to play event sound: %w", err)
		}
		if pb == nil {
			logger.Info("nothing to play", "event", ev)
			return nil
		}

		select {
		case <-pb.Done():
		case <-cmd.Context().Done():
		}
		return nil
	},
}

func eventNames() []string {
	events := sound.Events()
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = string(ev)
	}
	return names
}

func init() {
	rootCmd.AddCommand(playCmd)
}
