package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/usecase"
	"github.com/secmon-lab/foodrec/pkg/utils/errutil"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// decodeRequest parses a JSON body into req and validates it. An empty body leaves req unchanged.
func decodeRequest(r *http.Request, req any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return goerr.Wrap(errors.Join(usecase.ErrInvalidInput, err), "failed to decode request body")
	}

	if err := getValidator().Struct(req); err != nil {
		return goerr.Wrap(errors.Join(usecase.ErrInvalidInput, err), "invalid request")
	}
	return nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(ctx).Error("failed to write response", "error", err)
	}
}

// statusOf maps an error kind to its HTTP status
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNoProducts):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, usecase.ErrRetrievalFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func handleError(r *http.Request, w http.ResponseWriter, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

// queryInt reads a positive integer query parameter, returning def when it is absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, goerr.Wrap(usecase.ErrInvalidInput, "query parameter must be a positive integer",
			goerr.V("name", name),
			goerr.V("value", raw))
	}
	return v, nil
}
