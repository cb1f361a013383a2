package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteCmd creates the delete command.
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <note_id>",
		Short:   "Move a note to the trash",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			if err := api.DeleteNote(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete note: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return printJSON(out, map[string]any{"success": true, "id": id})
			}
			fmt.Fprintf(out, "Moved note %s to trash\n", formatNoteID(id))
			return nil
		},
	}
}
