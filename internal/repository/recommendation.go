package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveRecommendations stores one ranking run. Rank is the 1-based position.
func (r *Repository) SaveRecommendations(ctx context.Context, runID uuid.UUID, userID int64, recs []domain.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"recommendations"},
		[]string{"run_id", "user_id", "video_id", "rank", "score", "virality", "relevance", "engagement", "final_score", "matched_tags"},
		pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
			rec := recs[i]
			return []any{
				runID, userID, rec.VideoID, int32(i + 1), rec.Score,
				rec.Scores.Virality, rec.Scores.Relevance, rec.Scores.Engagement, rec.Scores.Final,
				rec.MatchedTags,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("save recommendations run %s for user %d: %w", runID, userID, err)
	}
	return nil
}
