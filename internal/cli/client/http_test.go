package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Body     string
}

// recordingServer answers every request with the given envelope and records what it saw.
func recordingServer(t *testing.T, status int, envelope string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Body:     string(body),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, envelope)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *APIClient {
	t.Helper()
	c, err := NewAPIClientWithConfig(baseURL+"/api", 0, opts...)
	require.NoError(t, err)
	return c
}

const noteEnvelope = `{"code":0,"msg":"success","data":{"id":7,"title":"t","content":"c","created_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z"}}`

func TestNewAPIClientWithConfig_Validation(t *testing.T) {
	_, err := NewAPIClientWithConfig("localhost:8080", 0)
	assert.Error(t, err)

	_, err = NewAPIClientWithConfig("ftp://example.com", 0)
	assert.Error(t, err)

	c, err := NewAPIClientWithConfig("http://example.com/api/", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/api", c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.Timeout())

	c, err = NewAPIClientWithConfig("https://example.com/api", 0, WithTimeout(9*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 9*time.Second, c.Timeout())
}

func TestCreateNote_DefaultsBody(t *testing.T) {
	srv, reqs := recordingServer(t, http.StatusOK, noteEnvelope)
	c := newTestClient(t, srv.URL)

	_, err := c.CreateNote(context.Background(), "", "")
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/note", got.Path)
	assert.Equal(t, `{"title":"未命名笔记","content":""}`, got.Body)
}

func TestCreateNote_WhitespaceTitleSentAsIs(t *testing.T) {
	srv, reqs := recordingServer(t, http.StatusOK, noteEnvelope)
	c := newTestClient(t, srv.URL)

	_, err := c.CreateNote(context.Background(), "  ", "x")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"  ","content":"x"}`, (*reqs)[0].Body)
}

func TestCreateNote_KeepsGivenFields(t *testing.T) {
	srv, reqs := recordingServer(t, http.StatusOK, noteEnvelope)
	c := newTestClient(t, srv.URL)

	note, err := c.CreateNote(context.Background(), "Groceries", "milk")
	require.NoError(t, err)
	assert.Equal(t, int64(7), note.ID)
	assert.Equal(t, 2026, note.CreatedAt.Year())

	assert.JSONEq(t, `{"title":"Groceries","content":"milk"}`, (*reqs)[0].Body)
}

func TestListNotes_Query(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		size     int
		expected string
	}{
		{"defaults", 0, 0, "page=1&size=10"},
		{"explicit", 3, 25, "page=3&size=25"},
		{"passes through unvalidated", -1, 500, "page=-1&size=500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, reqs := recordingServer(t, http.StatusOK, `{"code":0,"msg":"success","data":{"list":[],"total":0}}`)
			c := newTestClient(t, srv.URL)

			page, err := c.ListNotes(context.Background(), tt.page, tt.size)
			require.NoError(t, err)
			assert.Empty(t, page.List)

			got := (*reqs)[0]
			assert.Equal(t, http.MethodGet, got.Method)
			assert.Equal(t, "/api/note/list", got.Path)
			assert.Equal(t, tt.expected, got.RawQuery)
		})
	}
}

func TestRagSearch_DefaultTopK(t *testing.T) {
	srv, reqs := recordingServer(t, http.StatusOK, `{"code":0,"msg":"success","data":[{"note_id":1,"title":"a","frag_id":"f","score":0.9,"link":"/note/1","content":"x"}]}`)
	c := newTestClient(t, srv.URL)

	hits, err := c.RagSearch(context.Background(), "foo", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "/note/1", hits[0].Link)

	got := (*reqs)[0]
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/rag/search", got.Path)
	assert.Equal(t, "q=foo&topK=5", got.RawQuery)
}

func TestNoteOperations_Routes(t *testing.T) {
	title := "new"
	tests := []struct {
		name   string
		call   func(c *APIClient) error
		method string
		path   string
		body   string
	}{
		{"get", func(c *APIClient) error { _, err := c.GetNote(context.Background(), 7); return err }, http.MethodGet, "/api/note/7", ""},
		{"update", func(c *APIClient) error {
			_, err := c.UpdateNote(context.Background(), 7, NoteUpdate{Title: &title})
			return err
		}, http.MethodPut, "/api/note/7", `{"title":"new"}`},
		{"delete", func(c *APIClient) error { return c.DeleteNote(context.Background(), 7) }, http.MethodDelete, "/api/note/7", ""},
		{"restore", func(c *APIClient) error { _, err := c.RestoreNote(context.Background(), 7); return err }, http.MethodPost, "/api/note/7/restore", ""},
		{"purge", func(c *APIClient) error { return c.PurgeNote(context.Background(), 7) }, http.MethodDelete, "/api/note/7/purge", ""},
		{"qa", func(c *APIClient) error { _, err := c.RagQA(context.Background(), "why?", 0); return err }, http.MethodPost, "/api/rag/qa", `{"question":"why?"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, reqs := recordingServer(t, http.StatusOK, noteEnvelope)
			c := newTestClient(t, srv.URL)

			require.NoError(t, tt.call(c))
			require.Len(t, *reqs, 1)
			got := (*reqs)[0]
			assert.Equal(t, tt.method, got.Method)
			assert.Equal(t, tt.path, got.Path)
			assert.Equal(t, tt.body, got.Body)
		})
	}
}

// deadlineTransport records the deadline of each request context and answers with an empty success.
type deadlineTransport struct {
	deadline time.Time
	ok       bool
}

func (d *deadlineTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	d.deadline, d.ok = req.Context().Deadline()
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"code":0,"msg":"success","data":{"answer":"a","sources":[]}}`)),
		Request:    req,
	}, nil
}

func TestRagQA_Timeouts(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		expected time.Duration
	}{
		{"default", 0, 180 * time.Second},
		{"override", 2 * time.Second, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &deadlineTransport{}
			c, err := NewAPIClientWithConfig("http://notes.test/api", 0, WithHTTPClient(&http.Client{Transport: rt}))
			require.NoError(t, err)

			start := time.Now()
			result, err := c.RagQA(context.Background(), "q", tt.timeout)
			require.NoError(t, err)
			assert.Equal(t, "a", result.Answer)

			require.True(t, rt.ok)
			assert.WithinDuration(t, start.Add(tt.expected), rt.deadline, time.Second)
		})
	}
}

func TestDefaultTimeout_AppliedPerCall(t *testing.T) {
	rt := &deadlineTransport{}
	c, err := NewAPIClientWithConfig("http://notes.test/api", 0, WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	start := time.Now()
	_, _ = c.ListNotes(context.Background(), 0, 0)

	require.True(t, rt.ok)
	assert.WithinDuration(t, start.Add(DefaultTimeout), rt.deadline, time.Second)
}

func TestErrors_APIError(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusNotFound, `{"code":1,"msg":"note not found","data":null}`)
	c := newTestClient(t, srv.URL)

	_, err := c.GetNote(context.Background(), 99)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, 1, apiErr.Code)
	assert.Equal(t, "note not found", apiErr.Message)
	assert.True(t, IsNotFound(err))

	var transportErr *TransportError
	assert.False(t, errors.As(err, &transportErr))
}

func TestErrors_APIErrorWithPlainBody(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusBadGateway, "upstream down")
	c := newTestClient(t, srv.URL)

	_, err := c.ListNotes(context.Background(), 0, 0)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestErrors_NonZeroCodeOnSuccessStatus(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusOK, `{"code":1,"msg":"rejected","data":null}`)
	c := newTestClient(t, srv.URL)

	_, err := c.CreateNote(context.Background(), "x", "y")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Equal(t, "rejected", apiErr.Message)
}

func TestErrors_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c := newTestClient(t, baseURL)
	_, err := c.ListNotes(context.Background(), 0, 0)
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.MethodGet, transportErr.Method)
	assert.False(t, transportErr.Timeout())

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestErrors_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewAPIClientWithConfig(srv.URL+"/api", 50*time.Millisecond)
	require.NoError(t, err)

	_, err = c.GetNote(context.Background(), 1)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.True(t, transportErr.Timeout())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestErrors_CallerCancellation(t *testing.T) {
	srv, reqs := recordingServer(t, http.StatusOK, noteEnvelope)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetNote(ctx, 1)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, *reqs)
}

func TestErrors_DecodeError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"wrong data shape", `{"code":0,"msg":"success","data":"a string"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := recordingServer(t, http.StatusOK, tt.body)
			c := newTestClient(t, srv.URL)

			_, err := c.GetNote(context.Background(), 1)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, tt.body, string(decodeErr.Body))

			var apiErr *APIError
			assert.False(t, errors.As(err, &apiErr))
		})
	}
}

// fakeNoteAPI is an in-memory stand-in for the note endpoints.
type fakeNoteAPI struct {
	mu     sync.Mutex
	nextID int64
	notes  map[int64]*Note
}

func newFakeNoteAPI(t *testing.T) *httptest.Server {
	t.Helper()
	f := &fakeNoteAPI{nextID: 1, notes: map[int64]*Note{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/note", f.create)
	mux.HandleFunc("GET /api/note/{id}", f.get)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeNoteAPI) create(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, 1, "invalid request body", nil)
		return
	}

	f.mu.Lock()
	now := time.Now().UTC().Truncate(time.Second)
	n := &Note{ID: f.nextID, Title: req.Title, Content: req.Content, CreatedAt: now, UpdatedAt: now}
	f.notes[n.ID] = n
	f.nextID++
	f.mu.Unlock()

	writeEnvelope(w, http.StatusOK, 0, "success", n)
}

func (f *fakeNoteAPI) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	f.mu.Lock()
	n, ok := f.notes[id]
	f.mu.Unlock()

	if !ok {
		writeEnvelope(w, http.StatusNotFound, 1, "note not found", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, 0, "success", n)
}

func writeEnvelope(w http.ResponseWriter, status, code int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Code: code, Msg: msg, Data: mustJSON(data)})
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func TestCreateThenGet_RoundTrip(t *testing.T) {
	srv := newFakeNoteAPI(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	created, err := c.CreateNote(ctx, "Trip", "pack socks")
	require.NoError(t, err)

	fetched, err := c.GetNote(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", fetched.Title)
	assert.Equal(t, "pack socks", fetched.Content)

	untitled, err := c.CreateNote(ctx, "", "")
	require.NoError(t, err)

	fetched, err = c.GetNote(ctx, untitled.ID)
	require.NoError(t, err)
	assert.Equal(t, UntitledNote, fetched.Title)
	assert.Equal(t, "", fetched.Content)

	_, err = c.GetNote(ctx, 404)
	assert.True(t, IsNotFound(err))
}

func TestAPIClient_ConcurrentCalls(t *testing.T) {
	srv := newFakeNoteAPI(t)
	c := newTestClient(t, srv.URL)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.CreateNote(context.Background(), "n"+strconv.Itoa(i), "")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestWithLogger_LogsRequests(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusOK, noteEnvelope)
	core, logs := observer.New(zapcore.DebugLevel)
	c := newTestClient(t, srv.URL, WithLogger(zap.New(core)))

	_, err := c.GetNote(context.Background(), 7)
	require.NoError(t, err)

	entries := logs.FilterMessage("api request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, srv.URL+"/api/note/7", fields["url"])
}
