package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
	"github.com/actuallystonmai/video-recommendation-service/internal/logging"
	"github.com/jackc/pgx/v5"
)

// Get single user profile, without tags
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.UserProfile, error) {
	user := &domain.UserProfile{}

	err := r.pool.QueryRow(ctx,
		`SELECT id, username, bio, follower_count, following_count, video_count, region, language, created_at
		 FROM user_profiles WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.Bio, &user.FollowerCount, &user.FollowingCount,
		&user.VideoCount, &user.Region, &user.Language, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user %q: %w", username, err)
	}

	return user, nil
}

// Get scored tags, highest affinity first. Invalid rows are skipped.
func (r *Repository) GetUserTags(ctx context.Context, userID int64) ([]domain.UserTag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT tag, affinity, reason, base_affinity, engagement_boost
		 FROM user_tags WHERE user_id = $1
		 ORDER BY affinity DESC, tag`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tags for user %d: %w", userID, err)
	}
	defer rows.Close()

	var tags []domain.UserTag
	for rows.Next() {
		var t domain.UserTag
		if err := rows.Scan(&t.Tag, &t.Affinity, &t.Reason, &t.BaseAffinity, &t.EngagementBoost); err != nil {
			return nil, fmt.Errorf("scan user tag: %w", err)
		}
		if err := t.Validate(); err != nil {
			logging.Warn().Err(err).Int64("user_id", userID).Msg("skipping stored tag")
			continue
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user tags: %w", err)
	}
	return tags, nil
}

// Replace a user's scored tags in one transaction
func (r *Repository) SaveUserTags(ctx context.Context, userID int64, tags []domain.UserTag) error {
	for _, t := range tags {
		if err := t.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save tags for user %d: %w", userID, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_tags WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear tags for user %d: %w", userID, err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"user_tags"},
		[]string{"user_id", "tag", "affinity", "reason", "base_affinity", "engagement_boost"},
		pgx.CopyFromSlice(len(tags), func(i int) ([]any, error) {
			t := tags[i]
			return []any{userID, t.Tag, t.Affinity, t.Reason, t.BaseAffinity, t.EngagementBoost}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("insert tags for user %d: %w", userID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tags for user %d: %w", userID, err)
	}
	return nil
}

// Get usernames for page
func (r *Repository) GetUsernamesPaginated(ctx context.Context, page, limit int) ([]string, error) {
	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx,
		`SELECT username FROM user_profiles ORDER BY id LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query usernames for page %d: %w", page, err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect usernames: %w", err)
	}
	return names, nil
}

// Count total users
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_profiles`,
	).Scan(&total)

	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}
