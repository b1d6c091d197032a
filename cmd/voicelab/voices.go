package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/lukasbauer/voicelab/internal/studio"
	"github.com/lukasbauer/voicelab/internal/tts"
	"github.com/spf13/cobra"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the voice catalog",
	Long: `List every voice the server's provider offers. The voice marked with * is
the one used by "say" when --voice is not given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		return listVoices(cmd.Context(), cmd.OutOrStdout(), client)
	},
}

func init() {
	rootCmd.AddCommand(voicesCmd)
}

func listVoices(ctx context.Context, w io.Writer, backend studio.Backend) error {
	s := studio.New(backend, studio.FileStore{}, nil, nil)
	defer s.Close()

	if err := s.Load(ctx); err != nil {
		return err
	}
	selected, _ := s.Selected()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tCATEGORY\tLABELS")
	for _, v := range s.Voices() {
		mark := ""
		if v.VoiceID == selected.VoiceID {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, v.VoiceID, v.Name, v.Category, formatLabels(v))
	}
	return tw.Flush()
}

// formatLabels renders labels as sorted key=value pairs.
func formatLabels(v tts.Voice) string {
	keys := make([]string, 0, len(v.Labels))
	for k := range v.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + v.Labels[k]
	}
	return strings.Join(pairs, ", ")
}
