package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lukasbauer/voicelab/internal/studio"
	"github.com/spf13/cobra"
)

type sayOptions struct {
	VoiceID string
	Out     string
	Text    string
}

var sayCmd = &cobra.Command{
	Use:   "say [text...]",
	Short: "Synthesize text and save the audio",
	Long: `Synthesize text through the server's proxy and write the MPEG audio to a file.
Without --voice the first voice in the catalog is used.`,
	Example: `  voicelab say --voice 21m00Tcm4TlvDq8ikWAM --out hello.mp3 Hello there`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		voiceID, err := cmd.Flags().GetString("voice")
		if err != nil {
			return fmt.Errorf("failed to get voice flag: %w", err)
		}
		out, err := cmd.Flags().GetString("out")
		if err != nil {
			return fmt.Errorf("failed to get out flag: %w", err)
		}

		return say(cmd.Context(), cmd.OutOrStdout(), client, sayOptions{
			VoiceID: voiceID,
			Out:     out,
			Text:    strings.Join(args, " "),
		})
	},
}

func init() {
	rootCmd.AddCommand(sayCmd)

	sayCmd.Flags().String("voice", "", "Voice ID (defaults to the first catalog voice)")
	sayCmd.Flags().StringP("out", "o", "speech.mp3", "Output MP3 file")
}

func say(ctx context.Context, w io.Writer, backend studio.Backend, opts sayOptions) error {
	// Temp files live next to the output so the final rename stays on one filesystem.
	store := studio.FileStore{Dir: filepath.Dir(opts.Out), Pattern: ".voicelab-*.mp3"}
	s := studio.New(backend, store, nil, nil)
	defer s.Close()

	if err := s.Load(ctx); err != nil {
		return err
	}
	if opts.VoiceID != "" {
		if err := s.Select(opts.VoiceID); err != nil {
			return err
		}
	}
	s.SetText(opts.Text)

	res, err := s.Generate(ctx)
	if err != nil {
		return err
	}
	if err := os.Rename(res.Location(), opts.Out); err != nil {
		return fmt.Errorf("save audio: %w", err)
	}

	voice, _ := s.Selected()
	fmt.Fprintf(w, "Wrote %s (voice %s, %s)\n", opts.Out, voice.Name, voice.VoiceID)
	return nil
}
