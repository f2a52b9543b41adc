package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
	"github.com/actuallystonmai/video-recommendation-service/internal/logging"
	"github.com/actuallystonmai/video-recommendation-service/internal/metrics"
	"github.com/actuallystonmai/video-recommendation-service/internal/model"
	"github.com/google/uuid"
)

const (
	defaultLimit      = 10
	maxLimit          = 50
	candidateTagCount = 10
	batchConcurrency  = 10
	batchRecLimit     = 10
)

// Store is the persistence the service needs.
type Store interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.UserProfile, error)
	GetUserTags(ctx context.Context, userID int64) ([]domain.UserTag, error)
	SaveUserTags(ctx context.Context, userID int64, tags []domain.UserTag) error
	GetTagMappings(ctx context.Context, userID int64) ([]domain.TagMapping, error)
	GetUserActivity(ctx context.Context, userID int64, maxPosts, maxLiked int) (domain.UserActivity, error)
	GetCandidateVideos(ctx context.Context, userID int64, tags []string, limit int) ([]domain.VideoRecord, error)
	SaveRecommendations(ctx context.Context, runID uuid.UUID, userID int64, recs []domain.Recommendation) error
	GetUsernamesPaginated(ctx context.Context, page, limit int) ([]string, error)
	CountUsers(ctx context.Context) (int, error)
}

// Cache holds ranked lists per username and limit.
type Cache interface {
	Get(ctx context.Context, username string, limit int) (*domain.RecommendationResult, bool, error)
	Set(ctx context.Context, username string, limit int, result *domain.RecommendationResult) error
	ClearUserCache(ctx context.Context, username string) error
}

type Options struct {
	// CandidatePool caps candidate videos loaded per ranking run.
	CandidatePool int
	MaxPosts      int
	MaxLikedPosts int
}

type Service struct {
	repo        Store
	cache       Cache
	modelClient *model.Client
	opts        Options
}

func NewService(repo Store, cache Cache, modelClient *model.Client, opts Options) *Service {
	if opts.CandidatePool <= 0 {
		opts.CandidatePool = 200
	}
	return &Service{
		repo:        repo,
		cache:       cache,
		modelClient: modelClient,
		opts:        opts,
	}
}

func (s *Service) GetRecommendations(ctx context.Context, username string, limit int) (*domain.RecommendationResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	// Check Cache
	cached, found, err := s.cache.Get(ctx, username, limit)
	if err != nil {
		logging.Warn().Err(err).Str("username", username).Msg("cache get failed")
	}
	metrics.IncCache(found)

	if found {
		return cached, nil
	}

	// Cache miss -> generate recommendations
	result, err := s.generateRecommendations(ctx, username, limit)
	if err != nil {
		return nil, err
	}

	if result.Degraded {
		logging.Warn().Str("username", username).Str("run_id", result.RunID).Msg("embedding provider degraded, result not cached")
		return result, nil
	}
	if cacheErr := s.cache.Set(ctx, username, limit, result); cacheErr != nil {
		logging.Warn().Err(cacheErr).Str("username", username).Msg("cache set failed")
	}

	return result, nil
}

func (s *Service) generateRecommendations(ctx context.Context, username string, limit int) (*domain.RecommendationResult, error) {
	start := time.Now()

	user, err := s.loadProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(user.Tags) == 0 {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrProfileNotBuilt)
	}

	candidates, err := s.repo.GetCandidateVideos(ctx, user.ID, tagNames(user.Tags, candidateTagCount), s.opts.CandidatePool)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	candidates = uniqueVideos(candidates)

	scored, err := s.modelClient.Score(ctx, model.ScoreInput{
		User:       *user,
		Candidates: candidates,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	recs := scored.Recommendations

	runID := uuid.New()
	if err := s.repo.SaveRecommendations(ctx, runID, user.ID, recs); err != nil {
		logging.Error().Err(err).Str("username", username).Str("run_id", runID.String()).Msg("persist recommendations failed")
	}

	metrics.ObserveRanking(start, len(recs))
	logging.Info().
		Str("username", username).
		Str("run_id", runID.String()).
		Int("candidates", len(candidates)).
		Int("served", len(recs)).
		Bool("degraded", scored.Degraded).
		Dur("elapsed", time.Since(start)).
		Msg("recommendations generated")

	return &domain.RecommendationResult{
		RunID:           runID.String(),
		Recommendations: recs,
		Candidates:      len(candidates),
		Degraded:        scored.Degraded,
	}, nil
}

// loadProfile returns the user with stored tags attached.
func (s *Service) loadProfile(ctx context.Context, username string) (*domain.UserProfile, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	tags, err := s.repo.GetUserTags(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch user tags: %w", err)
	}
	user.Tags = tags
	return user, nil
}

// GetProfile returns the user with the scored tags from the last build.
func (s *Service) GetProfile(ctx context.Context, username string) (*domain.UserProfile, error) {
	return s.loadProfile(ctx, username)
}

// BuildProfile rescores the user's tag mappings against their activity,
// stores the result and invalidates cached recommendations.
func (s *Service) BuildProfile(ctx context.Context, username string) (*domain.UserProfile, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		metrics.IncProfileBuild(domain.StatusFailed)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	tags, err := s.scoreProfile(ctx, user)
	if err != nil {
		metrics.IncProfileBuild(domain.StatusFailed)
		return nil, err
	}
	user.Tags = tags
	metrics.IncProfileBuild(domain.StatusSuccess)

	if err := s.cache.ClearUserCache(ctx, username); err != nil {
		logging.Warn().Err(err).Str("username", username).Msg("cache invalidation failed")
	}

	logging.Info().Str("username", username).Int("tags", len(tags)).Msg("profile built")
	return user, nil
}

func (s *Service) scoreProfile(ctx context.Context, user *domain.UserProfile) ([]domain.UserTag, error) {
	mappings, err := s.repo.GetTagMappings(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch tag mappings: %w", err)
	}

	activity, err := s.repo.GetUserActivity(ctx, user.ID, s.opts.MaxPosts, s.opts.MaxLikedPosts)
	if err != nil {
		return nil, fmt.Errorf("fetch activity: %w", err)
	}

	tags := s.modelClient.ProfileTags(mappings, *user, activity)
	if err := s.repo.SaveUserTags(ctx, user.ID, tags); err != nil {
		return nil, fmt.Errorf("save user tags: %w", err)
	}
	return tags, nil
}

func (s *Service) GetBatchRecommendations(ctx context.Context, page, limit int) (*domain.BatchResponse, error) {
	start := time.Now()

	usernames, err := s.repo.GetUsernamesPaginated(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch usernames: %w", err)
	}

	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count user: %w", err)
	}

	// Process users concurrently with bounded worker pool
	results := make([]domain.BatchUserResult, len(usernames))
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency) // semaphore

	for i, username := range usernames {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			results[idx] = s.processUserForBatch(ctx, name)
		}(i, username)
	}
	wg.Wait()

	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Page:       page,
		Limit:      limit,
		TotalUsers: totalUsers,
		Results:    results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Generates recommendations for a single user, capturing errors.
func (s *Service) processUserForBatch(ctx context.Context, username string) domain.BatchUserResult {
	result, err := s.GetRecommendations(ctx, username, batchRecLimit)
	if err != nil {
		logging.Warn().Err(err).Str("username", username).Msg("batch: user failed")
		code, msg := categorizeError(err)
		return domain.BatchUserResult{
			Username: username,
			Status:   domain.StatusFailed,
			Error:    code,
			Message:  msg,
		}
	}

	return domain.BatchUserResult{
		Username:        username,
		Recommendations: result.Recommendations,
		Status:          domain.StatusSuccess,
	}
}

// uniqueVideos drops repeated ids, keeping the first occurrence.
func uniqueVideos(videos []domain.VideoRecord) []domain.VideoRecord {
	seen := make(map[string]struct{}, len(videos))
	out := videos[:0]
	for _, v := range videos {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}
	return out
}

func tagNames(tags []domain.UserTag, n int) []string {
	names := make([]string, 0, min(n, len(tags)))
	for _, t := range tags {
		if len(names) == n {
			break
		}
		names = append(names, t.Tag)
	}
	return names
}

// Handle response error
func categorizeError(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found", "user not found"
	case errors.Is(err, domain.ErrProfileNotBuilt):
		return "profile_not_built", "user profile has not been built"
	case errors.Is(err, domain.ErrInvalidRecord):
		return "invalid_record", "stored data failed validation"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "request_timeout", "request timed out"
	}
	return "internal_error", "an unexpected error occurred"
}
