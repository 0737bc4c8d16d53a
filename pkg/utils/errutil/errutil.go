package errutil

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
)

// ErrorResponse is the JSON body written for failed HTTP requests
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handle logs the error with a message and reports it to Sentry when configured.
// The error is returned as-is so callers can propagate it.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logging.From(ctx).Error(msg, errorAttrs(err)...)
	report(ctx, err, nil)
	return err
}

// HandleHTTP logs the error and writes an appropriate HTTP error response.
// Server errors are also reported to Sentry.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)
	attrs := append([]any{slog.Int("status", statusCode)}, errorAttrs(err)...)

	if statusCode >= http.StatusInternalServerError {
		logger.Error("HTTP error", attrs...)
		report(ctx, err, map[string]any{"status": statusCode})
	} else {
		logger.Warn("HTTP error", attrs...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); encErr != nil {
		logger.Error("failed to write error response", "error", encErr)
	}
}

func errorAttrs(err error) []any {
	var ge *goerr.Error
	if errors.As(err, &ge) {
		return []any{
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		}
	}
	return []any{"error", err.Error()}
}

func report(ctx context.Context, err error, extra map[string]any) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub = hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetContext("error", errorContext(err, extra))
		hub.CaptureException(err)
	})
}

// errorContext merges goerr values and caller extras into one Sentry context. Extras win on key collision.
func errorContext(err error, extra map[string]any) sentry.Context {
	sctx := sentry.Context{}
	var ge *goerr.Error
	if errors.As(err, &ge) {
		for k, v := range ge.Values() {
			sctx[k] = v
		}
	}
	for k, v := range extra {
		sctx[k] = v
	}
	return sctx
}
