package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noterag/noterag/internal/cli"
	"github.com/noterag/noterag/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "noteragd",
		Short: "noterag daemon",
		Long:  "noterag daemon for running the API server and maintaining the note index",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ReindexCmd())
	rootCmd.AddCommand(admin.PurgeCmd())
	rootCmd.AddCommand(admin.BackupCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if target, ok := cli.HelpJSONTarget(rootCmd, os.Args[1:]); ok {
		if err := cli.WriteSchema(os.Stdout, target); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
