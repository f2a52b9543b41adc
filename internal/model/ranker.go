package model

import (
	"sort"
	"strings"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
)

const (
	// neutralScore stands in for a missing component score.
	neutralScore = 0.5

	likeRatioWeight    = 0.3
	commentRatioWeight = 0.4
	shareRatioWeight   = 0.3
	qualityScale       = 10.0

	maxMatchedTags = 5
)

// Ranker merges component scores into an ordered recommendation list.
type Ranker struct {
	weights   Weights
	diversity DiversityConfig
}

func NewRanker(weights Weights, diversity DiversityConfig) *Ranker {
	return &Ranker{weights: weights, diversity: diversity}
}

// Rank builds, sorts and diversifies recommendations. Videos without an id
// are skipped; missing virality or relevance scores count as 0.5.
func (r *Ranker) Rank(videos []domain.VideoRecord, virality, relevance map[string]float64, user domain.UserProfile) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, len(videos))
	for _, v := range videos {
		if v.ID == "" {
			continue
		}
		vir, ok := virality[v.ID]
		if !ok {
			vir = neutralScore
		}
		rel, ok := relevance[v.ID]
		if !ok {
			rel = neutralScore
		}
		eng := EngagementQuality(v.Stats)

		final := vir*r.weights.Virality + rel*r.weights.Relevance + eng*r.weights.Engagement

		recs = append(recs, domain.Recommendation{
			VideoID:     v.ID,
			Description: v.Description,
			Author:      v.Author,
			URL:         v.URL,
			CreateTime:  v.CreateTime,
			Stats:       v.Stats,
			Hashtags:    v.Hashtags,
			MusicTitle:  v.MusicTitle,
			Score:       final,
			Scores: domain.ScoreBreakdown{
				Virality:   vir,
				Relevance:  rel,
				Engagement: eng,
				Final:      final,
			},
			MatchedTags: MatchedTags(v, user.Tags),
			SourceQuery: v.SourceQuery,
			SourceTags:  v.SourceTags,
		})
	}

	sortByScore(recs)
	r.applyDiversity(recs)
	return recs
}

// EngagementQuality rates per-play interaction intensity. Roughly 10% likes,
// 1% comments and 0.5% shares lands near 1.0.
func EngagementQuality(st domain.VideoStats) float64 {
	if st.Plays == 0 {
		return neutralScore
	}
	plays := float64(st.Plays)
	q := float64(st.Likes)/plays*likeRatioWeight +
		float64(st.Comments)/plays*commentRatioWeight +
		float64(st.Shares)/plays*shareRatioWeight
	return clamp01(q * qualityScale)
}

// MatchedTags lists user tags found in the video's description and hashtags,
// then the video's source tags, capped at five in discovery order.
func MatchedTags(v domain.VideoRecord, tags []domain.UserTag) []string {
	text := strings.ToLower(v.Description + " " + strings.Join(v.Hashtags, " "))

	matched := make([]string, 0, maxMatchedTags)
	seen := make(map[string]struct{})
	for _, t := range tags {
		if matchTag(text, t.Tag) == noMatch {
			continue
		}
		matched = append(matched, t.Tag)
		seen[t.Tag] = struct{}{}
	}
	for _, st := range v.SourceTags {
		if _, ok := seen[st]; ok {
			continue
		}
		matched = append(matched, st)
		seen[st] = struct{}{}
	}
	if len(matched) > maxMatchedTags {
		matched = matched[:maxMatchedTags]
	}
	return matched
}

// applyDiversity dampens repeated authors and repeated tag sets in a single
// forward pass over the sorted list, then re-sorts once.
func (r *Ranker) applyDiversity(recs []domain.Recommendation) {
	d := r.diversity
	if len(recs) < d.MinItems {
		return
	}

	seenAuthors := make(map[string]struct{})
	seenTags := make(map[string]struct{})
	for i := range recs {
		rec := &recs[i]
		accepted := i

		if _, ok := seenAuthors[rec.Author]; ok && accepted >= d.AuthorAfter {
			rec.Score *= d.AuthorPenalty
		}
		if len(rec.MatchedTags) > 0 && subsetOf(rec.MatchedTags, seenTags) && accepted >= d.TagAfter {
			rec.Score *= d.TagPenalty
		}

		seenAuthors[rec.Author] = struct{}{}
		for _, t := range rec.MatchedTags {
			seenTags[t] = struct{}{}
		}
	}

	sortByScore(recs)
}

func subsetOf(tags []string, set map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

func sortByScore(recs []domain.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
}
