package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// TrashCmd creates the trash command group.
func TrashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Manage deleted notes",
	}

	cmd.AddCommand(trashListCmd())
	cmd.AddCommand(trashRestoreCmd())
	cmd.AddCommand(trashPurgeCmd())

	return cmd
}

func trashListCmd() *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes in the trash",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			result, err := api.ListTrash(cmd.Context(), page, size)
			if err != nil {
				return fmt.Errorf("trash list failed: %w", err)
			}
			return printPage(cmd, result, page, size, "Trash is empty.")
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 0, "Page number (default 1)")
	cmd.Flags().IntVarP(&size, "size", "n", 0, "Page size (default 10)")

	return cmd
}

func trashRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <note_id>",
		Short: "Restore a note from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			note, err := api.RestoreNote(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to restore note: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return printJSON(out, note)
			}
			fmt.Fprintf(out, "Restored note %s: %s\n", formatNoteID(note.ID), note.Title)
			return nil
		},
	}
}

func trashPurgeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge <note_id>",
		Short: "Permanently delete a note from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("purge is permanent; pass --yes to confirm")
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			if err := api.PurgeNote(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to purge note: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return printJSON(out, map[string]any{"success": true, "id": id})
			}
			fmt.Fprintf(out, "Purged note %s\n", formatNoteID(id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm permanent deletion")

	return cmd
}
