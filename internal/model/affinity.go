package model

import (
	"math"
	"strings"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
)

const (
	postEvidenceWeight   = 1.0
	repostEvidenceWeight = 0.8
	likedEvidenceWeight  = 0.6

	maxEngagementBoost = 0.2
	boostDivisor       = 100.0
)

// AffinityScorer adjusts initial tag mappings with evidence from the user's
// own posts, reposts and likes.
type AffinityScorer struct{}

func NewAffinityScorer() *AffinityScorer { return &AffinityScorer{} }

// Score returns one UserTag per mapping with a non-empty tag, in input order.
func (s *AffinityScorer) Score(mappings []domain.TagMapping, user domain.UserProfile, activity domain.UserActivity) []domain.UserTag {
	influence := InfluenceFactor(user.FollowerCount)

	tags := make([]domain.UserTag, 0, len(mappings))
	for _, m := range mappings {
		if m.Tag == "" {
			continue
		}
		boost := EngagementBoost(m.Tag, activity)
		tags = append(tags, domain.UserTag{
			Tag:             m.Tag,
			Affinity:        clamp01(m.Affinity + boost*influence),
			Reason:          m.Reason,
			BaseAffinity:    m.Affinity,
			EngagementBoost: boost,
		})
	}
	return tags
}

// EngagementBoost sums weighted engagement of the user's items that mention
// tag, scaled into [0, 0.2].
func EngagementBoost(tag string, activity domain.UserActivity) float64 {
	t := strings.ToLower(tag)
	if t == "" {
		return 0
	}
	total := postEvidenceWeight*taggedEngagement(t, activity.Posts) +
		repostEvidenceWeight*taggedEngagement(t, activity.Reposts) +
		likedEvidenceWeight*taggedEngagement(t, activity.Liked)
	return math.Min(maxEngagementBoost, total/boostDivisor)
}

// taggedEngagement sums likes + 2*comments + 3*shares over items whose
// description or hashtags contain tag.
func taggedEngagement(tag string, items []domain.VideoRecord) float64 {
	var sum float64
	for _, v := range items {
		if !mentions(v, tag) {
			continue
		}
		sum += float64(v.Stats.Likes) + 2*float64(v.Stats.Comments) + 3*float64(v.Stats.Shares)
	}
	return sum
}

func mentions(v domain.VideoRecord, lowerTag string) bool {
	if strings.Contains(strings.ToLower(v.Description), lowerTag) {
		return true
	}
	for _, h := range v.Hashtags {
		if strings.Contains(strings.ToLower(h), lowerTag) {
			return true
		}
	}
	return false
}

// InfluenceFactor scales behavioural evidence by follower reach.
func InfluenceFactor(followers int64) float64 {
	switch {
	case followers < 1_000:
		return 0.8
	case followers < 10_000:
		return 0.9
	case followers < 100_000:
		return 1.0
	case followers < 1_000_000:
		return 1.1
	default:
		return 1.2
	}
}
