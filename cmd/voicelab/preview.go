package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/lukasbauer/voicelab/internal/studio"
	"github.com/lukasbauer/voicelab/internal/tts"
	"github.com/spf13/cobra"
)

const defaultPlayer = "ffplay -nodisp -autoexit -loglevel quiet"

var previewCmd = &cobra.Command{
	Use:   "preview VOICE_ID",
	Short: "Play a voice's preview sample",
	Long: `Play the provider's preview sample for a voice with an external player.
The preview URL is appended to the player command as its last argument.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		player, err := cmd.Flags().GetString("player")
		if err != nil {
			return fmt.Errorf("failed to get player flag: %w", err)
		}
		return preview(cmd.Context(), cmd.OutOrStdout(), client, args[0], strings.Fields(player))
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().String("player", defaultPlayer, "Player command")
}

// preview plays voiceID's sample and returns when playback ends or ctx is done.
func preview(ctx context.Context, w io.Writer, backend studio.Backend, voiceID string, command []string) error {
	var player *studio.ExecPlayer
	newPlayer := studio.ExecPlayerFactory(command)
	factory := func(v tts.Voice) (studio.Player, error) {
		p, err := newPlayer(v)
		if ep, ok := p.(*studio.ExecPlayer); ok {
			player = ep
		}
		return p, err
	}

	s := studio.New(backend, studio.FileStore{}, factory, nil)
	defer s.Close()

	if err := s.Load(ctx); err != nil {
		return err
	}
	if _, err := s.TogglePreview(voiceID); err != nil {
		return err
	}

	fmt.Fprintf(w, "Playing preview for %s\n", voiceID)
	select {
	case <-player.Done():
	case <-ctx.Done():
	}
	return nil
}
