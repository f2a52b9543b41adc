package model

import (
	"testing"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
)

func TestInfluenceFactor(t *testing.T) {
	tests := []struct {
		followers int64
		want      float64
	}{
		{0, 0.8},
		{999, 0.8},
		{1_000, 0.9},
		{9_999, 0.9},
		{10_000, 1.0},
		{99_999, 1.0},
		{100_000, 1.1},
		{999_999, 1.1},
		{1_000_000, 1.2},
		{50_000_000, 1.2},
	}
	for _, tt := range tests {
		if got := InfluenceFactor(tt.followers); got != tt.want {
			t.Errorf("InfluenceFactor(%d) = %f, want %f", tt.followers, got, tt.want)
		}
	}
}

func cookingActivity() domain.UserActivity {
	return domain.UserActivity{
		Posts: []domain.VideoRecord{
			{Description: "my dinner", Hashtags: []string{"CookingTips"}, Stats: domain.VideoStats{Likes: 3, Comments: 1, Shares: 1}},
			{Description: "unrelated", Stats: domain.VideoStats{Likes: 1000}},
		},
		Reposts: []domain.VideoRecord{
			{Description: "Cooking show", Stats: domain.VideoStats{Likes: 5}},
		},
		Liked: []domain.VideoRecord{
			{Description: "home cooking", Stats: domain.VideoStats{Likes: 5}},
		},
	}
}

func TestEngagementBoost(t *testing.T) {
	// post 3+2+3=8 at 1.0, repost 5 at 0.8, liked 5 at 0.6 => 15/100
	got := EngagementBoost("cooking", cookingActivity())
	if !almostEqual(got, 0.15, 1e-12) {
		t.Errorf("boost = %f, want 0.15", got)
	}

	heavy := domain.UserActivity{Posts: []domain.VideoRecord{{Description: "cooking", Stats: domain.VideoStats{Likes: 10_000}}}}
	if got := EngagementBoost("cooking", heavy); got != maxEngagementBoost {
		t.Errorf("boost = %f, want cap %f", got, maxEngagementBoost)
	}

	if got := EngagementBoost("gaming", cookingActivity()); got != 0 {
		t.Errorf("unmentioned tag boost = %f, want 0", got)
	}
}

func TestAffinityScore(t *testing.T) {
	s := NewAffinityScorer()
	mappings := []domain.TagMapping{
		{Tag: "cooking", Affinity: 0.5, Reason: "food creator"},
		{Tag: "", Affinity: 0.9},
		{Tag: "travel", Affinity: 0.95},
	}
	user := domain.UserProfile{Username: "chef", FollowerCount: 50_000}
	activity := cookingActivity()
	activity.Posts = append(activity.Posts, domain.VideoRecord{Description: "travel vlog", Stats: domain.VideoStats{Shares: 1_000}})

	tags := s.Score(mappings, user, activity)
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}

	cooking := tags[0]
	if cooking.Tag != "cooking" || cooking.Reason != "food creator" {
		t.Errorf("unexpected first tag %+v", cooking)
	}
	if !almostEqual(cooking.Affinity, 0.65, 1e-9) {
		t.Errorf("cooking affinity = %f, want 0.65", cooking.Affinity)
	}
	if cooking.BaseAffinity != 0.5 || !almostEqual(cooking.EngagementBoost, 0.15, 1e-12) {
		t.Errorf("cooking breakdown = %+v", cooking)
	}

	if tags[1].Affinity != 1.0 {
		t.Errorf("travel affinity = %f, want clamped 1.0", tags[1].Affinity)
	}
}

func TestAffinityNeverBelowBase(t *testing.T) {
	s := NewAffinityScorer()
	mappings := []domain.TagMapping{{Tag: "a", Affinity: 0.3}, {Tag: "b", Affinity: 0}, {Tag: "c", Affinity: 1}}
	for _, tag := range s.Score(mappings, domain.UserProfile{}, cookingActivity()) {
		if tag.Affinity < tag.BaseAffinity || tag.Affinity > 1 {
			t.Errorf("%s: affinity %f outside [base %f, 1]", tag.Tag, tag.Affinity, tag.BaseAffinity)
		}
	}
}
