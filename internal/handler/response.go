package handler

import "github.com/actuallystonmai/video-recommendation-service/internal/domain"

type RecommendationResponse struct {
	Username        string                    `json:"username"`
	Recommendations []domain.Recommendation   `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type ProfileResponse struct {
	Profile *domain.UserProfile `json:"profile"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
