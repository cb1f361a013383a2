package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List notes",
		Long:    "Lists live notes, most recently updated first.",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			result, err := api.ListNotes(cmd.Context(), page, size)
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}
			return printPage(cmd, result, page, size, "No notes found.")
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 0, "Page number (default 1)")
	cmd.Flags().IntVarP(&size, "size", "n", 0, "Page size (default 10)")

	return cmd
}

func printPage(cmd *cobra.Command, result *NotePage, page, size int, empty string) error {
	out := cmd.OutOrStdout()
	if outputJSON(cmd) {
		return printJSON(out, result)
	}

	if len(result.List) == 0 {
		fmt.Fprintln(out, empty)
		return nil
	}

	if page == 0 {
		page = DefaultPage
	}
	if size == 0 {
		size = DefaultPageSize
	}
	fmt.Fprintf(out, "Showing %d of %d notes (page %d, size %d):\n\n", len(result.List), result.Total, page, size)
	printNoteList(out, result.List)
	return nil
}
