package model

// Weights combine the three component scores into a final score.
// They are applied as given and are not renormalized.
type Weights struct {
	Virality   float64
	Relevance  float64
	Engagement float64
}

// DiversityConfig controls the post-sort diversity pass.
type DiversityConfig struct {
	// MinItems is the smallest list the pass runs on.
	MinItems int
	// AuthorAfter is how many items must already be accepted before a
	// repeated author is penalized.
	AuthorAfter int
	// TagAfter is how many items must already be accepted before a
	// fully repeated tag set is penalized.
	TagAfter      int
	AuthorPenalty float64
	TagPenalty    float64
}

type Config struct {
	Weights   Weights
	Diversity DiversityConfig
	// MinVideoScore drops ranked videos scoring below it.
	MinVideoScore float64
	// MinTagAffinity drops scored tags below it when building a profile.
	MinTagAffinity float64
	// Concurrency bounds parallel per-video embedding calls.
	Concurrency int
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Virality:   0.3,
			Relevance:  0.4,
			Engagement: 0.3,
		},
		Diversity: DiversityConfig{
			MinItems:      11,
			AuthorAfter:   4,
			TagAfter:      6,
			AuthorPenalty: 0.9,
			TagPenalty:    0.85,
		},
		MinVideoScore:  0.5,
		MinTagAffinity: 0.3,
		Concurrency:    8,
	}
}
