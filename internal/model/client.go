package model

import (
	"context"
	"sort"
	"time"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
	"github.com/actuallystonmai/video-recommendation-service/internal/embedding"
)

// Client bundles the scorers behind the two entry points the service uses:
// scoring a user's tags and ranking candidate videos for that user.
type Client struct {
	cfg       Config
	virality  *ViralityScorer
	relevance *RelevanceScorer
	affinity  *AffinityScorer
	ranker    *Ranker
}

// NewClient builds a Client. provider may be nil, which makes every semantic
// similarity neutral.
func NewClient(cfg Config, provider embedding.Provider) *Client {
	return &Client{
		cfg:       cfg,
		virality:  NewViralityScorer(time.Now),
		relevance: NewRelevanceScorer(provider, cfg.Concurrency),
		affinity:  NewAffinityScorer(),
		ranker:    NewRanker(cfg.Weights, cfg.Diversity),
	}
}

type ScoreInput struct {
	User       domain.UserProfile
	Candidates []domain.VideoRecord
	Limit      int
}

// ScoreResult is a ranked list. Degraded is set when the embedding provider
// failed during the run and every semantic similarity fell back to neutral.
type ScoreResult struct {
	Recommendations []domain.Recommendation
	Degraded        bool
}

// Score ranks the candidates for the user, drops those under MinVideoScore
// and returns at most Limit (all when Limit <= 0). It fails only when ctx
// is done; a provider failure yields a consistently neutral, Degraded result.
func (c *Client) Score(ctx context.Context, input ScoreInput) (ScoreResult, error) {
	if err := ctx.Err(); err != nil {
		return ScoreResult{}, err
	}

	viralityScores := c.virality.ScoreBatch(input.Candidates)
	relevanceScores, degraded := c.relevance.ScoreBatch(ctx, input.Candidates, input.User.Tags)
	if err := ctx.Err(); err != nil {
		return ScoreResult{}, err
	}

	ranked := c.ranker.Rank(input.Candidates, viralityScores, relevanceScores, input.User)

	kept := ranked[:0]
	for _, rec := range ranked {
		if rec.Score >= c.cfg.MinVideoScore {
			kept = append(kept, rec)
		}
	}

	if input.Limit > 0 && len(kept) > input.Limit {
		kept = kept[:input.Limit]
	}
	return ScoreResult{Recommendations: kept, Degraded: degraded}, nil
}

// ProfileTags scores tag mappings against the user's activity, drops tags
// under MinTagAffinity and orders the rest by descending affinity.
func (c *Client) ProfileTags(mappings []domain.TagMapping, user domain.UserProfile, activity domain.UserActivity) []domain.UserTag {
	scored := c.affinity.Score(mappings, user, activity)

	tags := scored[:0]
	for _, t := range scored {
		if t.Affinity >= c.cfg.MinTagAffinity {
			tags = append(tags, t)
		}
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Affinity > tags[j].Affinity
	})
	return tags
}
