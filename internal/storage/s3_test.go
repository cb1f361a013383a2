//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noterag/noterag/internal/testutil"
)

func newTestClient(ctx context.Context, t *testing.T) *S3Client {
	t.Helper()
	rc := testutil.NewRustFSContainer(ctx, t)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "noterag-test",
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))
	return client
}

func TestNewS3Client_RequiresBucket(t *testing.T) {
	_, err := NewS3Client(context.Background(), S3ClientConfig{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestS3Client_PutGetHead(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)
	assert.Equal(t, "noterag-test", client.Bucket())

	require.NoError(t, client.EnsureBucket(ctx))

	body := []byte(`{"notes":[]}`)
	require.NoError(t, client.PutObject(ctx, "backups/notes-test.json", "application/json", body))

	meta, err := client.HeadObject(ctx, "backups/notes-test.json")
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), meta.Size)
	assert.Equal(t, "application/json", meta.ContentType)

	got, err := client.GetObject(ctx, "backups/notes-test.json")
	require.NoError(t, err)
	assert.Equal(t, body, got)

	url, err := client.PresignGet(ctx, "backups/notes-test.json", 0)
	require.NoError(t, err)
	assert.Contains(t, url, "backups/notes-test.json")
	assert.Contains(t, url, "X-Amz-Expires=3600")

	_, err = client.HeadObject(ctx, "backups/missing.json")
	assert.Error(t, err)
}

func TestS3Client_ListObjects(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t)

	require.NoError(t, client.PutObject(ctx, "backups/a.json", "application/json", []byte("{}")))
	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, client.PutObject(ctx, "backups/b.json", "application/json", []byte("{}")))
	require.NoError(t, client.PutObject(ctx, "other/c.json", "application/json", []byte("{}")))

	objects, err := client.ListObjects(ctx, "backups/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "backups/b.json", objects[0].Key)
	assert.Equal(t, "backups/a.json", objects[1].Key)
}
