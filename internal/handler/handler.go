package handler

import (
	"context"
	"net/http"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
	"github.com/actuallystonmai/video-recommendation-service/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// Recommender is the service surface the handlers call.
type Recommender interface {
	GetRecommendations(ctx context.Context, username string, limit int) (*domain.RecommendationResult, error)
	GetBatchRecommendations(ctx context.Context, page, limit int) (*domain.BatchResponse, error)
	BuildProfile(ctx context.Context, username string) (*domain.UserProfile, error)
	GetProfile(ctx context.Context, username string) (*domain.UserProfile, error)
}

// HealthCheck is a named dependency probe reported by /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct {
	service Recommender
	checks  []HealthCheck
}

func NewHandler(svc Recommender, checks ...HealthCheck) *Handler {
	return &Handler{service: svc, checks: checks}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("encode response")
	}
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
