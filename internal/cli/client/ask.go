package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// AskCmd creates the question answering command.
func AskCmd() *cobra.Command {
	var qaTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question answered from your notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			result, err := api.RagQA(cmd.Context(), strings.Join(args, " "), qaTimeout)
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return printJSON(out, result)
			}
			fmt.Fprintln(out, result.Answer)
			if len(result.Sources) > 0 {
				fmt.Fprintf(out, "\n%s\nSources:\n", separator())
				for _, s := range result.Sources {
					fmt.Fprintf(out, "  %s %s (score %.3f)\n", formatNoteID(s.NoteID), s.Title, s.Score)
				}
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&qaTimeout, "qa-timeout", DefaultQATimeout, "Timeout for the answer")

	return cmd
}
