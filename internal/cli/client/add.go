package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddCmd creates the add command.
func AddCmd() *cobra.Command {
	var title, content, file string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Long: `Creates a note. A missing title becomes "` + UntitledNote + `".

Examples:
  noterag add --title "Standup" --content "notes..."
  noterag add --title "Design" --file design.md
  cat draft.md | noterag add --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				if cmd.Flags().Changed("content") {
					return fmt.Errorf("--content and --file are mutually exclusive")
				}
				c, err := readContent(cmd, file)
				if err != nil {
					return err
				}
				content = c
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			note, err := api.CreateNote(cmd.Context(), title, content)
			if err != nil {
				return fmt.Errorf("failed to create note: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON(cmd) {
				return printJSON(out, note)
			}
			fmt.Fprintf(out, "Created note %s: %s\n", formatNoteID(note.ID), note.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Note content")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read content from file (- for stdin)")

	return cmd
}
