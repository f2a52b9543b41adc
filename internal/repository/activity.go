package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
)

// GetUserActivity loads the user's most recent posts, reposts (both bounded
// by maxPosts) and liked videos (bounded by maxLiked).
func (r *Repository) GetUserActivity(ctx context.Context, userID int64, maxPosts, maxLiked int) (domain.UserActivity, error) {
	var activity domain.UserActivity
	var err error

	if activity.Posts, err = r.getActivityVideos(ctx, userID, domain.ActivityPost, maxPosts); err != nil {
		return activity, err
	}
	if activity.Reposts, err = r.getActivityVideos(ctx, userID, domain.ActivityRepost, maxPosts); err != nil {
		return activity, err
	}
	if activity.Liked, err = r.getActivityVideos(ctx, userID, domain.ActivityLike, maxLiked); err != nil {
		return activity, err
	}
	return activity, nil
}

func (r *Repository) getActivityVideos(ctx context.Context, userID int64, kind domain.ActivityKind, limit int) ([]domain.VideoRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+`
		FROM user_activity a
		JOIN videos v ON v.id = a.video_id
		WHERE a.user_id = $1 AND a.kind = $2
		ORDER BY a.created_at DESC
		LIMIT $3`,
		userID, string(kind), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get %s activity for user %d: %w", kind, userID, err)
	}
	return collectVideos(rows)
}

// AddActivity records that the user posted, reposted or liked a video.
func (r *Repository) AddActivity(ctx context.Context, userID int64, videoID string, kind domain.ActivityKind) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_activity (user_id, video_id, kind) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, video_id, kind) DO NOTHING`,
		userID, videoID, string(kind),
	)
	if err != nil {
		return fmt.Errorf("add %s activity for user %d: %w", kind, userID, err)
	}
	return nil
}
