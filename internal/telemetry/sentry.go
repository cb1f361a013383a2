// Package telemetry reports errors and traces to Sentry. Every helper is safe
// to call when Sentry was never initialized.
package telemetry

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

const (
	serverName   = "noteragd"
	flushTimeout = 5 * time.Second
)

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
	Debug            bool
	Logger           *zap.Logger
}

// Init configures the global Sentry client and returns a flush func for shutdown.
// An empty DSN, or a DSN Sentry rejects, leaves telemetry disabled.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		ServerName:       serverName,
		Debug:            cfg.Debug,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		TracesSampler:    sampler(cfg.TracesSampleRate),
		BeforeSend:       dropCanceled,
	})
	if err != nil {
		logger.Warn("sentry init failed, continuing without telemetry", zap.Error(err))
		return func() {}, nil
	}

	logger.Info("sentry initialized",
		zap.String("environment", cfg.Environment),
		zap.Float64("traces_sample_rate", cfg.TracesSampleRate),
	)

	return func() { sentry.Flush(flushTimeout) }, nil
}

// sampler skips health probes and keeps the parent's decision for child spans.
func sampler(rate float64) sentry.TracesSampler {
	return func(ctx sentry.SamplingContext) float64 {
		if ctx.Span.Name == "GET /health" {
			return 0
		}
		if ctx.Span.ParentSpanID != (sentry.SpanID{}) {
			if ctx.Span.Sampled.Bool() {
				return 1
			}
			return 0
		}
		return rate
	}
}

// dropCanceled discards events for requests the caller abandoned.
func dropCanceled(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if hint != nil && errors.Is(hint.OriginalException, context.Canceled) {
		return nil
	}
	return event
}

// SpanAttributes contains common attributes for service spans.
type SpanAttributes struct {
	NoteID    int64
	Operation string
	Count     int
}

// Span wraps a sentry span.
type Span struct {
	inner *sentry.Span
}

// End finishes the span.
func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetError marks the span failed and reports err on the span's hub.
func (s *Span) SetError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.Status = sentry.SpanStatusInternalError
	s.inner.SetData("error", err.Error())
	CaptureError(s.inner.Context(), err)
}

// StartSpan creates a child span when ctx already carries one, otherwise a new transaction.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	if attrs.NoteID != 0 {
		span.SetTag("note_id", strconv.FormatInt(attrs.NoteID, 10))
	}
	if attrs.Operation != "" {
		span.SetData("operation", attrs.Operation)
	}
	if attrs.Count != 0 {
		span.SetData("count", attrs.Count)
	}

	return span.Context(), &Span{inner: span}
}

func hubFor(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

// CaptureError reports err on the hub carried by ctx. Cancellations are ignored.
func CaptureError(ctx context.Context, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	hubFor(ctx).CaptureException(err)
}

// AddBreadcrumb records a breadcrumb attached to later events on the same hub.
func AddBreadcrumb(ctx context.Context, category, message string) {
	hubFor(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "default",
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}, nil)
}
