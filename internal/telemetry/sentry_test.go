package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_EmptyDSNIsNoop(t *testing.T) {
	shutdown, err := Init(Config{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestStartSpan_WithoutClient(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "rag.embed", SpanAttributes{NoteID: 7, Operation: "embed", Count: 3})
	assert.NotNil(t, ctx)
	require.NotNil(t, span)

	span.SetError(errors.New("boom"))
	span.End()
}

func TestCaptureError_WithoutClient(t *testing.T) {
	assert.NotPanics(t, func() {
		CaptureError(context.Background(), errors.New("boom"))
		AddBreadcrumb(context.Background(), "index", "queued")
	})
}

func TestDropCanceled(t *testing.T) {
	event := &sentry.Event{Message: "x"}

	assert.Nil(t, dropCanceled(event, &sentry.EventHint{OriginalException: context.Canceled}))
	assert.Same(t, event, dropCanceled(event, &sentry.EventHint{OriginalException: errors.New("boom")}))
	assert.Same(t, event, dropCanceled(event, nil))
}

func TestSampler(t *testing.T) {
	s := sampler(0.25)

	health := &sentry.Span{Name: "GET /health"}
	assert.Equal(t, 0.0, s(sentry.SamplingContext{Span: health}))

	root := &sentry.Span{Name: "GET /api/note/{id}"}
	assert.Equal(t, 0.25, s(sentry.SamplingContext{Span: root}))

	child := &sentry.Span{Name: "RAGService.Search", ParentSpanID: sentry.SpanID{1}, Sampled: sentry.SampledTrue}
	assert.Equal(t, 1.0, s(sentry.SamplingContext{Span: child}))
}
