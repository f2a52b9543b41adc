package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
)

// GET /users/{username}/recommendations
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 10)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}
	params := recommendationParams{Username: usernameParam(r), Limit: limit}
	if err := validate.Struct(params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	result, err := h.service.GetRecommendations(r.Context(), params.Username, params.Limit)
	if err != nil {
		writeServiceError(w, err, params.Username)
		return
	}

	resp := RecommendationResponse{
		Username:        params.Username,
		Recommendations: result.Recommendations,
		Metadata: domain.RecommendationMeta{
			RunID:       result.RunID,
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Recommendations),
			Candidates:  result.Candidates,
			Degraded:    result.Degraded,
		},
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(w http.ResponseWriter, err error, username string) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found",
			fmt.Sprintf("User %q does not exist", username))
	case errors.Is(err, domain.ErrProfileNotBuilt):
		writeError(w, http.StatusConflict, "profile_not_built",
			fmt.Sprintf("Profile for %q has not been built yet", username))
	case errors.Is(err, domain.ErrInvalidRecord):
		writeError(w, http.StatusUnprocessableEntity, "invalid_record", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request_timeout",
			"Request timed out, please try again")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
