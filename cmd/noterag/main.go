package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noterag/noterag/internal/cli"
	"github.com/noterag/noterag/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "noterag",
		Short: "noterag CLI - notes with retrieval-augmented search",
		Long: `noterag manages notes and queries them through the noterag API.

Environment variables:
  NOTERAG_API_URL   API base URL (default: ` + client.DefaultAPIURL + `)
  NOTERAG_TIMEOUT   Default request timeout, milliseconds or a duration (default: 5000)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Default request timeout (overrides env and config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every API request to stderr")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.AddCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.EditCmd())
	rootCmd.AddCommand(client.DeleteCmd())
	rootCmd.AddCommand(client.TrashCmd())
	rootCmd.AddCommand(client.FindCmd())
	rootCmd.AddCommand(client.SearchCmd())
	rootCmd.AddCommand(client.AskCmd())

	if target, ok := cli.HelpJSONTarget(rootCmd, os.Args[1:]); ok {
		if err := cli.WriteSchema(os.Stdout, target); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
