package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noterag/noterag/internal/service"
	"github.com/spf13/cobra"
)

// PurgeCmd hard-deletes trashed notes
func PurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Permanently delete notes in the trash",
		Long:  "Permanently delete every note in the trash, or every note with --all. Fragments are removed with their notes.",
		RunE:  runPurge,
	}

	cmd.Flags().Bool("yes", false, "Confirm the deletion")
	cmd.Flags().Bool("all", false, "Delete every note, not only the trash")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runPurge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")
	confirmed, _ := cmd.Flags().GetBool("yes")
	all, _ := cmd.Flags().GetBool("all")

	if !confirmed {
		return errors.New("refusing to purge without --yes")
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	noteSvc := service.NewNoteService(rt.notes, nil, nil, rt.logger)

	var purged int64
	if all {
		purged, err = noteSvc.PurgeAll(ctx)
	} else {
		purged, err = noteSvc.PurgeTrash(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to purge notes: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(map[string]interface{}{"purged": purged, "all": all}, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Purged %d notes\n", purged)
	}

	return nil
}
