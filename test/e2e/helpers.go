//go:build e2e

package e2e

import (
	"context"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/noterag/noterag/internal/api/handlers"
	"github.com/noterag/noterag/internal/cli/client"
	"github.com/noterag/noterag/internal/jobs"
	"github.com/noterag/noterag/internal/rag"
	"github.com/noterag/noterag/internal/repository"
	"github.com/noterag/noterag/internal/search"
	"github.com/noterag/noterag/internal/server"
	"github.com/noterag/noterag/internal/service"
	"github.com/noterag/noterag/internal/storage"
	"github.com/noterag/noterag/internal/testutil"
)

const embeddingDimensions = 64

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T         *testing.T
	Ctx       context.Context
	PostgresC *testutil.PostgresContainer
	RustFSC   *testutil.RustFSContainer
	Pool      *pgxpool.Pool
	Server    *httptest.Server
	Worker    *jobs.Worker
	Notes     *repository.NoteRepository
	S3Client  *storage.S3Client
	Client    *client.APIClient
	BinaryDir string
}

// SetupE2EEnv starts Postgres and RustFS and serves the full API in-process
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "e2e-backups",
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	logger := zap.NewNop()
	notes := repository.NewNoteRepository(pool)
	fragments := repository.NewFragmentRepository(pool)
	tx := repository.NewTxRunner(pool)

	keywords, err := search.NewNoteIndex()
	if err != nil {
		t.Fatalf("failed to create keyword index: %v", err)
	}

	queue := jobs.NewMemoryQueue()
	ragSvc := service.NewRAGService(notes, fragments, tx, rag.NewHashEmbedder(embeddingDimensions), nil, service.DefaultRAGConfig(), logger)
	noteSvc := service.NewNoteService(notes, queue, keywords, logger)
	worker := jobs.NewWorker(jobs.NewIndexWorker(queue, notes, ragSvc, keywords, logger), 50*time.Millisecond, logger)
	go worker.Start(context.Background())

	router := server.NewRouter(server.RouterConfig{
		NoteHandler:    handlers.NewNoteHandler(noteSvc),
		RAGHandler:     handlers.NewRAGHandler(ragSvc),
		Logger:         logger,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		MaxBodyBytes:   1 << 20,
	})
	srv := httptest.NewServer(router)

	apiClient, err := client.NewAPIClientWithConfig(srv.URL+"/api", 10*time.Second)
	if err != nil {
		t.Fatalf("failed to create API client: %v", err)
	}

	return &E2ETestEnv{
		T:         t,
		Ctx:       ctx,
		PostgresC: pgC,
		RustFSC:   s3C,
		Pool:      pool,
		Server:    srv,
		Worker:    worker,
		Notes:     notes,
		S3Client:  s3Client,
		Client:    apiClient,
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Worker != nil {
		e.Worker.Stop()
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// BuildCLI builds the noterag binary
func (e *E2ETestEnv) BuildCLI() {
	tmpDir, err := os.MkdirTemp("", "noterag-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "noterag"), "./cmd/noterag")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build noterag: %v\n%s", err, out)
	}
}

// RunCLI runs the noterag binary against the test server with an isolated config dir
func (e *E2ETestEnv) RunCLI(args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "noterag"), args...)
	cmd.Dir = e.BinaryDir
	cmd.Env = append(os.Environ(),
		"NOTERAG_API_URL="+e.Server.URL+"/api",
		"XDG_CONFIG_HOME="+filepath.Join(e.BinaryDir, "config"),
		"HOME="+e.BinaryDir,
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}
