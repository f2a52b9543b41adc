package domain

import (
	"fmt"
	"time"
)

type UserProfile struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Bio            string    `json:"bio,omitempty"`
	FollowerCount  int64     `json:"follower_count"`
	FollowingCount int64     `json:"following_count"`
	VideoCount     int64     `json:"video_count"`
	Region         string    `json:"region,omitempty"`
	Language       string    `json:"language,omitempty"`
	Tags           []UserTag `json:"tags"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserTag is a user's affinity for an interest tag.
// BaseAffinity and EngagementBoost record how Affinity was derived.
type UserTag struct {
	Tag             string  `json:"tag"`
	Affinity        float64 `json:"affinity"`
	Reason          string  `json:"reason,omitempty"`
	BaseAffinity    float64 `json:"base_affinity,omitempty"`
	EngagementBoost float64 `json:"engagement_boost,omitempty"`
}

func (t UserTag) Validate() error {
	if t.Tag == "" {
		return fmt.Errorf("%w: empty tag name", ErrInvalidRecord)
	}
	if t.Affinity < 0 || t.Affinity > 1 {
		return fmt.Errorf("%w: tag %q affinity %f outside [0,1]", ErrInvalidRecord, t.Tag, t.Affinity)
	}
	return nil
}

// TagMapping is an initial, not yet scored, tag-to-category assignment
// produced by the category source.
type TagMapping struct {
	Tag      string  `json:"tag"`
	Category string  `json:"category,omitempty"`
	Affinity float64 `json:"affinity"`
	Reason   string  `json:"reason,omitempty"`
}

// UserActivity is the user's own content evidence used for affinity scoring.
type UserActivity struct {
	Posts   []VideoRecord `json:"posts"`
	Reposts []VideoRecord `json:"reposts"`
	Liked   []VideoRecord `json:"liked"`
}

type ActivityKind string

const (
	ActivityPost   ActivityKind = "post"
	ActivityRepost ActivityKind = "repost"
	ActivityLike   ActivityKind = "like"
)
