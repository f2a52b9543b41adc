package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
)

// GetTagMappings returns the initial tag assignments for a user, as written
// by the category source.
func (r *Repository) GetTagMappings(ctx context.Context, userID int64) ([]domain.TagMapping, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT tag, category, affinity, reason
		 FROM tag_mappings WHERE user_id = $1
		 ORDER BY affinity DESC, tag`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tag mappings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var mappings []domain.TagMapping
	for rows.Next() {
		var m domain.TagMapping
		if err := rows.Scan(&m.Tag, &m.Category, &m.Affinity, &m.Reason); err != nil {
			return nil, fmt.Errorf("scan tag mapping: %w", err)
		}
		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag mappings: %w", err)
	}
	return mappings, nil
}
