package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
	"github.com/actuallystonmai/video-recommendation-service/internal/logging"
	"github.com/jackc/pgx/v5"
)

const videoColumns = `v.id, v.description, v.author, v.url, v.create_time,
	v.plays, v.likes, v.comments, v.shares,
	v.hashtags, v.music_title, v.source_query, v.source_tags`

type rawVideo struct {
	domain.VideoRecord
	createTime                     *int64
	plays, likes, comments, shares int64
}

func scanVideo(row pgx.Row) (*rawVideo, error) {
	var rv rawVideo
	v := &rv.VideoRecord
	err := row.Scan(&v.ID, &v.Description, &v.Author, &v.URL, &rv.createTime,
		&rv.plays, &rv.likes, &rv.comments, &rv.shares,
		&v.Hashtags, &v.MusicTitle, &v.SourceQuery, &v.SourceTags)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// record converts stored columns into a VideoRecord. Negative counters are
// rejected; a null create_time becomes 0.
func (rv *rawVideo) record() (domain.VideoRecord, error) {
	if rv.plays < 0 || rv.likes < 0 || rv.comments < 0 || rv.shares < 0 {
		return domain.VideoRecord{}, fmt.Errorf("%w: video %s has negative counters", domain.ErrInvalidRecord, rv.ID)
	}
	v := rv.VideoRecord
	v.Stats = domain.VideoStats{
		Plays:    uint64(rv.plays),
		Likes:    uint64(rv.likes),
		Comments: uint64(rv.comments),
		Shares:   uint64(rv.shares),
	}
	if rv.createTime != nil && *rv.createTime > 0 {
		v.CreateTime = *rv.createTime
	}
	return v, nil
}

// collectVideos scans all rows, skipping invalid records.
func collectVideos(rows pgx.Rows) ([]domain.VideoRecord, error) {
	defer rows.Close()

	var videos []domain.VideoRecord
	for rows.Next() {
		rv, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		v, err := rv.record()
		if err != nil {
			logging.Warn().Err(err).Str("video_id", rv.ID).Msg("skipping video")
			continue
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

// GetCandidateVideos returns videos fetched for any of tags that the user
// has not posted, reposted or liked.
func (r *Repository) GetCandidateVideos(ctx context.Context, userID int64, tags []string, limit int) ([]domain.VideoRecord, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+`
		FROM videos v
		WHERE v.source_tags && $2::text[]
		  AND NOT EXISTS (
		      SELECT 1 FROM user_activity a
		      WHERE a.user_id = $1 AND a.video_id = v.id)
		ORDER BY v.plays DESC, v.id
		LIMIT $3`,
		userID, tags, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidates for user %d: %w", userID, err)
	}
	return collectVideos(rows)
}
