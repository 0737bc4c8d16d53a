package usecase

import (
	"errors"
	"fmt"

	"github.com/secmon-lab/foodrec/pkg/domain/types"
)

// Sentinel errors for use case layer
var (
	// Error kinds of the recommendation engine
	ErrInvalidInput         = errors.New("invalid input")
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	ErrRetrievalFailure     = errors.New("retrieval failure")

	// ErrRecommendationFailed matches every error returned by RecommendUseCase
	ErrRecommendationFailed = errors.New("recommendation failed")

	// Seeding errors
	ErrNoProducts = errors.New("no products found, seed products first")
)

// Context keys for error values
const (
	UserIDKey     = "user_id"
	LimitKey      = "limit"
	ModeKey       = "mode"
	PreferenceKey = "preference"
	CountKey      = "count"
)

// RecommendError is returned by every failed recommendation call. errors.Is matches
// ErrRecommendationFailed, the Kind, and the underlying Cause.
type RecommendError struct {
	Mode  types.RecommendMode
	Kind  error
	Cause error
}

func newRecommendError(mode types.RecommendMode, kind, cause error) *RecommendError {
	return &RecommendError{Mode: mode, Kind: kind, Cause: cause}
}

func (e *RecommendError) Error() string {
	kind := "canceled"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s recommendation failed: %s", e.Mode, kind)
	}
	return fmt.Sprintf("%s recommendation failed: %s: %v", e.Mode, kind, e.Cause)
}

func (e *RecommendError) Unwrap() []error {
	errs := []error{ErrRecommendationFailed}
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
