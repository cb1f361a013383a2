package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <note_id>",
		Short:   "Show a note",
		Aliases: []string{"view"},
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

			note, err := api.GetNote(cmd.Context(), id)
			if err != nil {
				if IsNotFound(err) {
					return fmt.Errorf("note %d not found", id)
				}
				return fmt.Errorf("failed to get note: %w", err)
			}

			if outputJSON(cmd) {
				return printJSON(cmd.OutOrStdout(), note)
			}
			printNote(cmd.OutOrStdout(), note)
			return nil
		},
	}
}
