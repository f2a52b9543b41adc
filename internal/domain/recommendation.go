package domain

// ScoreBreakdown holds the component scores of a recommendation.
// Components are in [0,1]; Final is their weighted sum.
type ScoreBreakdown struct {
	Virality   float64 `json:"virality"`
	Relevance  float64 `json:"relevance"`
	Engagement float64 `json:"engagement"`
	Final      float64 `json:"final"`
}

type Recommendation struct {
	VideoID     string         `json:"video_id"`
	Description string         `json:"description"`
	Author      string         `json:"author"`
	URL         string         `json:"url,omitempty"`
	CreateTime  int64          `json:"create_time,omitempty"`
	Stats       VideoStats     `json:"stats"`
	Hashtags    []string       `json:"hashtags"`
	MusicTitle  string         `json:"music_title,omitempty"`
	Score       float64        `json:"score"`
	Scores      ScoreBreakdown `json:"scores"`
	MatchedTags []string       `json:"matched_tags"`
	SourceQuery string         `json:"source_query,omitempty"`
	SourceTags  []string       `json:"source_tags,omitempty"`
}

type RecommendationMeta struct {
	RunID       string `json:"run_id,omitempty"`
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
	Candidates  int    `json:"candidates,omitempty"`
	Degraded    bool   `json:"degraded,omitempty"`
}

type RecommendationResult struct {
	RunID           string
	Recommendations []Recommendation
	CacheHit        bool
	Candidates      int
	// Degraded results ranked without semantic similarity and are not cached.
	Degraded bool
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type BatchUserResult struct {
	Username        string           `json:"username"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Status          string           `json:"status"`
	Error           string           `json:"error,omitempty"`
	Message         string           `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

type BatchResponse struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalUsers int               `json:"total_users"`
	Results    []BatchUserResult `json:"results"`
	Summary    BatchSummary      `json:"summary"`
	Metadata   BatchMeta         `json:"metadata"`
}
