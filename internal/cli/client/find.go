package client

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// FindCmd creates the keyword search command.
func FindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Keyword search over note titles and content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			notes, err := api.SearchNotes(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("find failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				if notes == nil {
					notes = []*Note{}
				}
				return printJSON(out, notes)
			}
			if len(notes) == 0 {
				fmt.Fprintln(out, "No matching notes.")
				return nil
			}
			fmt.Fprintf(out, "Found %d notes:\n\n", len(notes))
			printNoteList(out, notes)
			return nil
		},
	}
}
