package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/foodrec/pkg/domain/types"
	"github.com/secmon-lab/foodrec/pkg/usecase"
)

func limitOrDefault(uc *usecase.RecommendUseCase, limit *int) int {
	if limit == nil {
		return uc.Config().DefaultLimit
	}
	return *limit
}

func recommendForUserHandler(uc *usecase.RecommendUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userRecommendRequest
		if err := decodeRequest(r, &req); err != nil {
			handleError(r, w, err)
			return
		}

		recs, err := uc.RecommendForUser(r.Context(), chi.URLParam(r, "userID"), limitOrDefault(uc, req.Limit))
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toRecommendationsResponse(types.RecommendModeUser.String(), recs))
	}
}

func recommendForPreferenceHandler(uc *usecase.RecommendUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req preferenceRecommendRequest
		if err := decodeRequest(r, &req); err != nil {
			handleError(r, w, err)
			return
		}

		recs, err := uc.RecommendForPreference(r.Context(), req.Preference, limitOrDefault(uc, req.Limit))
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toRecommendationsResponse(types.RecommendModePreference.String(), recs))
	}
}

// recommendHybridHandler serves both the body-only and the user-in-path forms. A user ID in the
// path takes precedence over the body.
func recommendHybridHandler(uc *usecase.RecommendUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hybridRecommendRequest
		if err := decodeRequest(r, &req); err != nil {
			handleError(r, w, err)
			return
		}
		if userID := chi.URLParam(r, "userID"); userID != "" {
			req.UserID = userID
		}

		recs, err := uc.RecommendHybrid(r.Context(), req.UserID, req.Preference, limitOrDefault(uc, req.Limit))
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toRecommendationsResponse(types.RecommendModeHybrid.String(), recs))
	}
}

func recommendPopularHandler(uc *usecase.RecommendUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userRecommendRequest
		if err := decodeRequest(r, &req); err != nil {
			handleError(r, w, err)
			return
		}

		recs, err := uc.RecommendPopular(r.Context(), limitOrDefault(uc, req.Limit))
		if err != nil {
			handleError(r, w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toRecommendationsResponse(types.RecommendModePopularity.String(), recs))
	}
}
