package model

import (
	"math"
	"time"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
)

const (
	playWeight       = 0.3
	engagementWeight = 0.3
	shareWeight      = 0.2
	timeWeight       = 0.2

	// neutralTimeDecay is used when the creation time is unknown.
	neutralTimeDecay = 0.5
)

var (
	playCurve = curve{
		points: []point{{0, 0}, {10_000, 0.3}, {100_000, 0.6}, {1_000_000, 0.8}, {10_000_000, 0.95}},
		tail:   func(x float64) float64 { return 0.95 + math.Min(0.05, x/1e8) },
	}
	engagementRateCurve = curve{
		points: []point{{0, 0}, {0.01, 0.3}, {0.05, 0.6}, {0.10, 0.85}, {0.20, 0.95}},
		tail:   func(x float64) float64 { return 0.95 + math.Min(0.05, x-0.20) },
	}
	shareCurve = curve{
		points: []point{{0, 0}, {100, 0.3}, {1_000, 0.6}, {10_000, 0.85}, {100_000, 0.95}},
		tail:   func(x float64) float64 { return 0.95 + math.Min(0.05, x/1e6) },
	}
)

// ViralityBreakdown exposes the sub-scores behind a virality score.
type ViralityBreakdown struct {
	EngagementRate  float64 `json:"engagement_rate"`
	PlayScore       float64 `json:"play_score"`
	EngagementScore float64 `json:"engagement_score"`
	ShareScore      float64 `json:"share_score"`
	TimeDecay       float64 `json:"time_decay"`
	Score           float64 `json:"score"`
}

// ViralityScorer estimates reach and momentum from raw counters and age.
type ViralityScorer struct {
	now func() time.Time
}

// NewViralityScorer returns a scorer using now as its clock; nil means time.Now.
func NewViralityScorer(now func() time.Time) *ViralityScorer {
	if now == nil {
		now = time.Now
	}
	return &ViralityScorer{now: now}
}

func (s *ViralityScorer) Score(v domain.VideoRecord) float64 {
	return s.Breakdown(v).Score
}

// ScoreBatch scores every video with an id.
func (s *ViralityScorer) ScoreBatch(videos []domain.VideoRecord) map[string]float64 {
	scores := make(map[string]float64, len(videos))
	for _, v := range videos {
		if v.ID == "" {
			continue
		}
		scores[v.ID] = s.Score(v)
	}
	return scores
}

func (s *ViralityScorer) Breakdown(v domain.VideoRecord) ViralityBreakdown {
	st := v.Stats
	var rate float64
	if st.Plays > 0 {
		rate = (float64(st.Likes) + float64(st.Comments) + float64(st.Shares)) / float64(st.Plays)
	}

	b := ViralityBreakdown{
		EngagementRate:  rate,
		PlayScore:       playCurve.at(float64(st.Plays)),
		EngagementScore: engagementRateCurve.at(rate),
		ShareScore:      shareCurve.at(float64(st.Shares)),
		TimeDecay:       s.timeDecay(v.CreateTime),
	}
	b.Score = math.Min(1.0,
		b.PlayScore*playWeight+
			b.EngagementScore*engagementWeight+
			b.ShareScore*shareWeight+
			b.TimeDecay*timeWeight)
	return b
}

func (s *ViralityScorer) timeDecay(createTime int64) float64 {
	if createTime <= 0 {
		return neutralTimeDecay
	}
	created := time.Unix(createTime, 0)
	days := math.Floor(s.now().Sub(created).Hours() / 24)

	switch {
	case days < 1:
		return 1.0
	case days < 7:
		return 0.9
	case days < 30:
		return 0.7
	case days < 90:
		return 0.5
	case days < 180:
		return 0.3
	default:
		return 0.1
	}
}
