package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ReindexCmd rebuilds the fragment index of every live note
func ReindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Re-embed every note",
		Long:  "Split and embed every non-deleted note again, replacing its stored fragments. Run after changing the embedding model or chunk size.",
		RunE:  runReindex,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	start := time.Now()
	indexed, err := rt.ragService().Reindex(ctx)
	if err != nil {
		return fmt.Errorf("failed to reindex notes: %w", err)
	}

	fragments, err := rt.fragments.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count fragments: %w", err)
	}
	rt.logger.Info("reindex complete",
		zap.Int("notes", indexed),
		zap.Int64("fragments", fragments),
		zap.Duration("took", time.Since(start)))

	if outputFormat == "json" {
		data := map[string]interface{}{
			"notes":     indexed,
			"fragments": fragments,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Reindexed %d notes (%d fragments)\n", indexed, fragments)
	}

	return nil
}
