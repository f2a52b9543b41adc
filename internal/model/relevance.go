package model

import (
	"context"
	"math"
	"strings"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
	"github.com/actuallystonmai/video-recommendation-service/internal/embedding"
	"golang.org/x/sync/errgroup"
)

const (
	relevanceTopTags   = 10
	sourceBoostTopTags = 5

	tagMatchWeight    = 0.4
	embeddingWeight   = 0.4
	sourceBoostWeight = 0.2
	sourceBoostFactor = 0.2

	// neutralSimilarity stands in when no embedding is available.
	neutralSimilarity = 0.5
)

// RelevanceScorer matches videos against a user's interest tags lexically
// and semantically. A nil provider scores every similarity as neutral.
type RelevanceScorer struct {
	provider    embedding.Provider
	concurrency int
}

func NewRelevanceScorer(provider embedding.Provider, concurrency int) *RelevanceScorer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &RelevanceScorer{provider: provider, concurrency: concurrency}
}

// ScoreBatch scores every video with an id. The user-interest embedding is
// computed once and shared by all videos.
//
// The semantic component is all or nothing: if the user embedding or any
// video embedding fails, every video gets neutral similarity and degraded is
// true. A nil provider or empty tags is neutral but not degraded.
func (s *RelevanceScorer) ScoreBatch(ctx context.Context, videos []domain.VideoRecord, tags []domain.UserTag) (scores map[string]float64, degraded bool) {
	sims := make([]float64, len(videos))
	for i := range sims {
		sims[i] = neutralSimilarity
	}

	userVec, err := s.userEmbedding(ctx, tags)
	if err != nil {
		degraded = true
	} else if userVec != nil {
		if videoSims, err := s.videoSimilarities(ctx, videos, userVec); err != nil {
			degraded = true
		} else {
			sims = videoSims
		}
	}

	scores = make(map[string]float64, len(videos))
	for i, v := range videos {
		if v.ID == "" {
			continue
		}
		scores[v.ID] = combineRelevance(v, tags, sims[i])
	}
	return scores, degraded
}

// videoSimilarities embeds every video with an id, failing on the first
// provider error. Videos with no text or an incomparable vector are neutral.
func (s *RelevanceScorer) videoSimilarities(ctx context.Context, videos []domain.VideoRecord, userVec []float32) ([]float64, error) {
	sims := make([]float64, len(videos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range videos {
		sims[i] = neutralSimilarity
		text := videoText(videos[i])
		if videos[i].ID == "" || strings.TrimSpace(text) == "" {
			continue
		}
		g.Go(func() error {
			vec, err := s.provider.Embed(gctx, text)
			if err != nil {
				return err
			}
			sims[i] = cosineScore(userVec, vec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sims, nil
}

// ScoreSingle scores one video. userVec may be nil, in which case the
// semantic component is neutral.
func (s *RelevanceScorer) ScoreSingle(ctx context.Context, v domain.VideoRecord, tags []domain.UserTag, userVec []float32) float64 {
	return combineRelevance(v, tags, s.similarity(ctx, videoText(v), userVec))
}

func combineRelevance(v domain.VideoRecord, tags []domain.UserTag, sim float64) float64 {
	tagMatch := tagMatchScore(strings.ToLower(videoText(v)), tags)
	boost := sourceTagBoost(v, tags)
	return math.Min(1.0, tagMatch*tagMatchWeight+sim*embeddingWeight+boost*sourceBoostWeight)
}

// UserEmbedding embeds the user's top tags, each repeated in proportion to
// its affinity. It returns nil when there are no tags or no provider result.
func (s *RelevanceScorer) UserEmbedding(ctx context.Context, tags []domain.UserTag) []float32 {
	vec, _ := s.userEmbedding(ctx, tags)
	return vec
}

func (s *RelevanceScorer) userEmbedding(ctx context.Context, tags []domain.UserTag) ([]float32, error) {
	if s.provider == nil || len(tags) == 0 {
		return nil, nil
	}
	return s.provider.Embed(ctx, userInterestText(tags))
}

func userInterestText(tags []domain.UserTag) string {
	var parts []string
	for _, t := range topTags(tags, relevanceTopTags) {
		reps := max(1, int(math.Round(t.Affinity*3)))
		for range reps {
			parts = append(parts, t.Tag)
			if t.Reason != "" {
				parts = append(parts, t.Reason)
			}
		}
	}
	return strings.Join(parts, " ")
}

func (s *RelevanceScorer) similarity(ctx context.Context, text string, userVec []float32) float64 {
	if userVec == nil || s.provider == nil {
		return neutralSimilarity
	}
	videoVec, err := s.provider.Embed(ctx, text)
	if err != nil {
		return neutralSimilarity
	}
	return cosineScore(userVec, videoVec)
}

// cosineScore maps cosine similarity from [-1,1] onto [0,1].
func cosineScore(a, b []float32) float64 {
	sim, ok := embedding.Cosine(a, b)
	if !ok {
		return neutralSimilarity
	}
	return clamp01((sim + 1) / 2)
}

// tagMatchScore is the affinity-weighted share of the top tags found in text.
// Component-only matches earn half weight.
func tagMatchScore(lowerText string, tags []domain.UserTag) float64 {
	var total, possible float64
	for _, t := range topTags(tags, relevanceTopTags) {
		possible += t.Affinity
		switch matchTag(lowerText, t.Tag) {
		case fullMatch:
			total += t.Affinity
		case partialMatch:
			total += t.Affinity * 0.5
		}
	}
	if possible <= 0 {
		return 0
	}
	return clamp01(total / possible)
}

// sourceTagBoost rewards videos fetched for one of the user's top tags.
// Only the first matching tag counts.
func sourceTagBoost(v domain.VideoRecord, tags []domain.UserTag) float64 {
	if len(v.SourceTags) == 0 {
		return 0
	}
	for _, t := range topTags(tags, sourceBoostTopTags) {
		for _, st := range v.SourceTags {
			if st == t.Tag {
				return sourceBoostFactor * t.Affinity
			}
		}
	}
	return 0
}
