package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RankingRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "videorec_ranking_runs_total",
		Help: "Total ranking runs",
	})
	RankingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "videorec_ranking_duration_seconds",
		Help:    "Scoring and ranking duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	RecommendationsServed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "videorec_recommendations_served_total",
		Help: "Total recommendations returned to callers",
	})
	EmbeddingRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "videorec_embedding_requests_total",
		Help: "Embedding requests by result",
	}, []string{"result"})
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "videorec_cache_lookups_total",
		Help: "Recommendation cache lookups by result",
	}, []string{"result"})
	ProfileBuilds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "videorec_profile_builds_total",
		Help: "Profile (affinity) builds by status",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(RankingRuns, RankingDuration, RecommendationsServed, EmbeddingRequests, CacheLookups, ProfileBuilds)
}

// ObserveRanking records a finished ranking run.
func ObserveRanking(start time.Time, served int) {
	RankingRuns.Inc()
	RankingDuration.Observe(time.Since(start).Seconds())
	RecommendationsServed.Add(float64(served))
}

func IncEmbedding(result string) { EmbeddingRequests.WithLabelValues(result).Inc() }

func IncCache(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

func IncProfileBuild(status string) { ProfileBuilds.WithLabelValues(status).Inc() }
