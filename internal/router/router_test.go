package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
	"github.com/actuallystonmai/video-recommendation-service/internal/handler"
	"github.com/stretchr/testify/assert"
)

type nopService struct{}

func (nopService) GetRecommendations(context.Context, string, int) (*domain.RecommendationResult, error) {
	return &domain.RecommendationResult{}, nil
}

func (nopService) GetBatchRecommendations(_ context.Context, page, limit int) (*domain.BatchResponse, error) {
	return &domain.BatchResponse{Page: page, Limit: limit}, nil
}

func (nopService) BuildProfile(_ context.Context, username string) (*domain.UserProfile, error) {
	return &domain.UserProfile{Username: username}, nil
}

func (nopService) GetProfile(_ context.Context, username string) (*domain.UserProfile, error) {
	return &domain.UserProfile{Username: username}, nil
}

func TestRoutes(t *testing.T) {
	r := Setup(handler.NewHandler(nopService{}), Options{})

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/users/chef/recommendations", http.StatusOK},
		{http.MethodGet, "/users/chef/profile", http.StatusOK},
		{http.MethodPost, "/users/chef/profile", http.StatusOK},
		{http.MethodGet, "/recommendations/batch", http.StatusOK},
		{http.MethodDelete, "/users/chef/profile", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
	}
}

func TestRateLimit(t *testing.T) {
	r := Setup(handler.NewHandler(nopService{}), Options{RateLimit: 2, RateWindow: time.Minute})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/chef/profile", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health is not rate limited")
}
