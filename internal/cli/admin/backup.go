package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noterag/noterag/internal/service"
	"github.com/noterag/noterag/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// BackupCmd uploads a JSON snapshot of all notes to S3
func BackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up all notes to S3",
		Long:  "Export every note, trash included, as JSON and upload it to the configured S3 bucket under backups/",
		RunE:  runBackup,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().Bool("list", false, "List existing backups instead of creating one")
	cmd.Flags().Duration("link-ttl", storage.DefaultPresignExpiry, "Validity of the presigned download link")

	return cmd
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.cfg

	if !cfg.HasS3() {
		return errors.New("backup requires NOTERAG_S3_ENDPOINT, NOTERAG_S3_ACCESS_KEY_ID and NOTERAG_S3_SECRET_ACCESS_KEY")
	}

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
	})
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}

	if list, _ := cmd.Flags().GetBool("list"); list {
		return listBackups(ctx, s3Client, outputFormat)
	}

	key, snap, err := service.NewBackupService(rt.notes, s3Client, rt.logger).Backup(ctx)
	if err != nil {
		return fmt.Errorf("failed to back up notes: %w", err)
	}

	ttl, _ := cmd.Flags().GetDuration("link-ttl")
	url, err := s3Client.PresignGet(ctx, key, ttl)
	if err != nil {
		rt.logger.Warn("could not presign backup url", zap.Error(err))
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"bucket":       s3Client.Bucket(),
			"key":          key,
			"notes":        snap.Count,
			"created_at":   snap.CreatedAt,
			"download_url": url,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Backed up %d notes to s3://%s/%s\n", snap.Count, s3Client.Bucket(), key)
		if url != "" {
			fmt.Printf("Download (valid %s): %s\n", ttl, url)
		}
	}

	return nil
}

func listBackups(ctx context.Context, s3Client *storage.S3Client, outputFormat string) error {
	objects, err := s3Client.ListObjects(ctx, service.BackupPrefix)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		if objects == nil {
			objects = []storage.ObjectInfo{}
		}
		jsonBytes, _ := json.MarshalIndent(objects, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	if len(objects) == 0 {
		fmt.Printf("No backups in s3://%s/%s\n", s3Client.Bucket(), service.BackupPrefix)
		return nil
	}
	for _, obj := range objects {
		fmt.Printf("%s  %8d bytes  %s\n", obj.LastModified.Local().Format("2006-01-02 15:04:05"), obj.Size, obj.Key)
	}
	return nil
}
