package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lukasbauer/voicelab/internal/apiclient"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "voicelab",
	Short:        "Command line client for a voicelab server",
	SilenceUsage: true, // Don't print usage on error
	Long: `voicelab lists the voices offered by a running voicelab server, synthesizes
text through its proxy and plays voice preview samples.`,
}

func init() {
	server := os.Getenv("VOICELAB_SERVER")
	if server == "" {
		server = apiclient.DefaultBaseURL
	}
	rootCmd.PersistentFlags().String("server", server, "voicelab server base URL (env VOICELAB_SERVER)")
}

func newClient(cmd *cobra.Command) (*apiclient.Client, error) {
	server, err := cmd.Flags().GetString("server")
	if err != nil {
		return nil, err
	}
	return apiclient.New(server, nil), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// Error already printed by cobra
		os.Exit(1)
	}
}
