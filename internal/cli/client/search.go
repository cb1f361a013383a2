package client

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const snippetRunes = 160

// SearchCmd creates the semantic search command.
func SearchCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over note fragments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			hits, err := api.RagSearch(cmd.Context(), strings.Join(args, " "), topK)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				if hits == nil {
					hits = []*SearchHit{}
				}
				return printJSON(out, hits)
			}
			if len(hits) == 0 {
				fmt.Fprintln(out, "No relevant fragments.")
				return nil
			}
			fmt.Fprintf(out, "Found %d fragments:\n\n", len(hits))
			printHits(cmd, hits)
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", DefaultTopK, "Maximum number of fragments")

	return cmd
}

func printHits(cmd *cobra.Command, hits []*SearchHit) {
	out := cmd.OutOrStdout()
	for i, h := range hits {
		fmt.Fprintf(out, "%d. %s (score %.3f)\n", i+1, h.Title, h.Score)
		fmt.Fprintf(out, "   Note: %s  %s\n", formatNoteID(h.NoteID), h.Link)
		fmt.Fprintf(out, "   %s\n", snippet(h.Content))
		if i < len(hits)-1 {
			fmt.Fprintln(out, separator())
		}
	}
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= snippetRunes {
		return s
	}
	return string(r[:snippetRunes]) + "..."
}
