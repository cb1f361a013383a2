package middleware

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
)

var spanStatusByCode = map[int]sentry.SpanStatus{
	http.StatusBadRequest:            sentry.SpanStatusInvalidArgument,
	http.StatusNotFound:              sentry.SpanStatusNotFound,
	http.StatusMethodNotAllowed:      sentry.SpanStatusUnimplemented,
	http.StatusConflict:              sentry.SpanStatusFailedPrecondition,
	http.StatusRequestEntityTooLarge: sentry.SpanStatusOutOfRange,
	http.StatusTooManyRequests:       sentry.SpanStatusResourceExhausted,
	499:                              sentry.SpanStatusCanceled,
	http.StatusServiceUnavailable:    sentry.SpanStatusUnavailable,
	http.StatusGatewayTimeout:        sentry.SpanStatusDeadlineExceeded,
}

// Sentry starts a transaction per request on a cloned hub, continuing an
// incoming sentry-trace header. The transaction is renamed to the matched chi
// route once the handler has run so ids do not split transactions.
func Sentry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}

		options := []sentry.SpanOption{
			sentry.WithOpName("http.server"),
			sentry.WithTransactionSource(sentry.SourceURL),
		}
		if trace := r.Header.Get(sentry.SentryTraceHeader); trace != "" {
			options = append(options, sentry.ContinueFromHeaders(trace, r.Header.Get(sentry.SentryBaggageHeader)))
		}

		transaction := sentry.StartTransaction(sentry.SetHubOnContext(r.Context(), hub), r.Method+" "+r.URL.Path, options...)
		defer transaction.Finish()

		r = r.WithContext(transaction.Context())

		hub.Scope().SetRequest(r)
		if requestID := GetRequestID(r.Context()); requestID != "" {
			hub.Scope().SetTag("request_id", requestID)
			transaction.SetTag("request_id", requestID)
		}

		defer func() {
			if err := recover(); err != nil {
				transaction.Status = sentry.SpanStatusInternalError
				hub.RecoverWithContext(r.Context(), err)
				panic(err)
			}
		}()

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				transaction.Name = r.Method + " " + pattern
				transaction.Source = sentry.SourceRoute
			}
		}

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		transaction.Status = httpStatusToSpanStatus(status)
		transaction.SetData("http.response.status_code", status)
	})
}

func httpStatusToSpanStatus(status int) sentry.SpanStatus {
	if s, ok := spanStatusByCode[status]; ok {
		return s
	}
	switch {
	case status < 400:
		return sentry.SpanStatusOK
	case status < 500:
		return sentry.SpanStatusInvalidArgument
	default:
		return sentry.SpanStatusInternalError
	}
}
