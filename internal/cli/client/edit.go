package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// EditCmd creates the edit command. Only the flags that are set are sent.
func EditCmd() *cobra.Command {
	var title, content, file string

	cmd := &cobra.Command{
		Use:   "edit <note_id>",
		Short: "Update a note's title or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			var update NoteUpdate
			if cmd.Flags().Changed("title") {
				update.Title = &title
			}
			if cmd.Flags().Changed("content") {
				update.Content = &content
			}
			if file != "" {
				if update.Content != nil {
					return fmt.Errorf("--content and --file are mutually exclusive")
				}
				c, err := readContent(cmd, file)
				if err != nil {
					return err
				}
				update.Content = &c
			}
			if update.Title == nil && update.Content == nil {
				return fmt.Errorf("nothing to update (use --title, --content or --file)")
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			note, err := api.UpdateNote(cmd.Context(), id, update)
			if err != nil {
				return fmt.Errorf("failed to update note: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return printJSON(out, note)
			}
			fmt.Fprintf(out, "Updated note %s: %s\n", formatNoteID(note.ID), note.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New content")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read new content from file (- for stdin)")

	return cmd
}
