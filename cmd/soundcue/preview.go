package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mekkanized/soundcue/internal/sound"
)

var previewOpts struct {
	volume float64
	pan    float64
	rate   float64
}

var previewCmd = &cobra.Command{
	Use:   "preview <url|path>",
	Short: "Play an arbitrary sound URL or local file",
	Long: `Play a sound directly from a URL or a local file, bypassing the event
bindings and the mute policy. Useful for auditioning a sound before
binding it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		opts := sound.GraphOptions{
			Volume: previewOpts.volume,
			Pan:    previewOpts.pan,
			Rate:   previewOpts.rate,
		}

		var pb *sound.Playback
		if isRemote(args[0]) {
			pb, err = svc.PlayURL(cmd.Context(), args[0], opts)
		} else {
			pb, err = svc.PlayFile(cmd.Context(), args[0], opts)
		}
		if err != nil {
			return fmt.Errorf("failed to preview sound: %w", err)
		}
		if pb == nil {
			return nil
		}

		select {
		case <-pb.Done():
		case <-cmd.Context().Done():
		}
		return nil
	},
}

// isRemote distinguishes fetchable URLs from local file paths.
func isRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

func init() {
	previewCmd.Flags().Float64Var(&previewOpts.volume, "volume", 1.0,
		"Playback volume (0.0 to 1.0)")
	previewCmd.Flags().Float64Var(&previewOpts.pan, "pan", 0,
		"Stereo pan (-1.0 left to 1.0 right)")
	previewCmd.Flags().Float64Var(&previewOpts.rate, "rate", 1.0,
		"Playback rate multiplier")
	rootCmd.AddCommand(previewCmd)
}
