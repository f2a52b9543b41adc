package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/actuallystonmai/video-recommendation-service/internal/domain"
	"github.com/actuallystonmai/video-recommendation-service/internal/embedding"
)

// fakeProvider serves vectors from a lookup function and counts calls per text.
type fakeProvider struct {
	mu    sync.Mutex
	calls map[string]int
	embed func(text string) ([]float32, error)
}

func newFakeProvider(embed func(text string) ([]float32, error)) *fakeProvider {
	return &fakeProvider{calls: make(map[string]int), embed: embed}
}

func (p *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.calls[text]++
	p.mu.Unlock()
	return p.embed(text)
}

func (p *fakeProvider) callsFor(text string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[text]
}

func TestRelevanceEmptyTags(t *testing.T) {
	s := NewRelevanceScorer(nil, 4)
	v := domain.VideoRecord{ID: "v1", Description: "anything at all", SourceTags: []string{"cooking"}}

	got := s.ScoreSingle(context.Background(), v, nil, nil)
	if !almostEqual(got, 0.2, 1e-12) {
		t.Errorf("empty tags relevance = %f, want 0.2", got)
	}
}

func TestRelevanceFullMatch(t *testing.T) {
	p := newFakeProvider(func(string) ([]float32, error) { return []float32{1, 0}, nil })
	s := NewRelevanceScorer(p, 4)
	tags := []domain.UserTag{{Tag: "cooking", Affinity: 1.0}}
	v := domain.VideoRecord{ID: "v1", Description: "Easy cooking tips", Author: "chef", SourceTags: []string{"cooking"}}

	got := s.ScoreSingle(context.Background(), v, tags, []float32{1, 0})
	// 0.4*1 + 0.4*1 + 0.2*(0.2*1)
	if !almostEqual(got, 0.84, 1e-9) {
		t.Errorf("relevance = %f, want 0.84", got)
	}
}

func TestTagMatchScore(t *testing.T) {
	tags := []domain.UserTag{
		{Tag: "street_food", Affinity: 0.8},
		{Tag: "gaming", Affinity: 0.2},
	}
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"no match", "a quiet walk", 0},
		{"full match", "best street_food ever", 0.8},
		{"partial match", "best food in town", 0.4},
		{"case insensitive", "GAMING night", 0.2},
		{"both", "street_food and gaming", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tagMatchScore(strings.ToLower(tt.text), tags)
			if !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("tagMatchScore = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMatchTagEmptyComponents(t *testing.T) {
	tests := []struct {
		tag, text string
		want      matchKind
	}{
		{"lo__fi", "quiet night", noMatch},
		{"_", "anything", noMatch},
		{"", "anything", noMatch},
		{"jazz_", "late jazz", partialMatch},
		{"lo__fi", "fi beats", partialMatch},
		{"Lo_Fi", "lo_fi beats", fullMatch},
	}
	for _, tt := range tests {
		t.Run(tt.tag+"/"+tt.text, func(t *testing.T) {
			if got := matchTag(tt.text, tt.tag); got != tt.want {
				t.Errorf("matchTag(%q, %q) = %d, want %d", tt.text, tt.tag, got, tt.want)
			}
		})
	}
}

func TestTagMatchOnlyTopTen(t *testing.T) {
	var tags []domain.UserTag
	for i := 0; i < 12; i++ {
		tags = append(tags, domain.UserTag{Tag: fmt.Sprintf("tag%02d", i), Affinity: 0.5})
	}
	// tag11 sits outside the top ten and must not count.
	if got := tagMatchScore("only tag11 here", tags); got != 0 {
		t.Errorf("tag outside top ten matched: %f", got)
	}
}

func TestSourceTagBoost(t *testing.T) {
	tags := []domain.UserTag{
		{Tag: "a", Affinity: 0.9},
		{Tag: "b", Affinity: 0.7},
		{Tag: "c", Affinity: 0.6},
		{Tag: "d", Affinity: 0.5},
		{Tag: "e", Affinity: 0.4},
		{Tag: "f", Affinity: 0.3},
	}
	tests := []struct {
		name       string
		sourceTags []string
		want       float64
	}{
		{"none", nil, 0},
		{"first match wins", []string{"b", "a"}, 0.2 * 0.9},
		{"single", []string{"c"}, 0.2 * 0.6},
		{"outside top five", []string{"f"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sourceTagBoost(domain.VideoRecord{SourceTags: tt.sourceTags}, tags)
			if !almostEqual(got, tt.want, 1e-12) {
				t.Errorf("boost = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestRelevanceProviderUnavailable(t *testing.T) {
	p := newFakeProvider(func(string) ([]float32, error) {
		return nil, fmt.Errorf("upstream down: %w", embedding.ErrUnavailable)
	})
	s := NewRelevanceScorer(p, 2)
	tags := []domain.UserTag{{Tag: "cooking", Affinity: 1.0}}
	v := domain.VideoRecord{ID: "v1", Description: "cooking"}

	scores, degraded := s.ScoreBatch(context.Background(), []domain.VideoRecord{v}, tags)
	// 0.4*1 + 0.4*0.5 + 0
	if !almostEqual(scores["v1"], 0.6, 1e-9) {
		t.Errorf("relevance = %f, want 0.6 with neutral similarity", scores["v1"])
	}
	if !degraded {
		t.Error("failed user embedding should mark the batch degraded")
	}
	if n := p.callsFor("cooking"); n != 0 {
		t.Errorf("video embedded %d times after user embedding failed", n)
	}
}

func TestRelevanceBatchAllOrNothing(t *testing.T) {
	tags := []domain.UserTag{{Tag: "cooking", Affinity: 1.0}}
	userText := userInterestText(tags)
	p := newFakeProvider(func(text string) ([]float32, error) {
		switch {
		case text == userText:
			return []float32{1, 0}, nil
		case strings.Contains(text, "broken"):
			return nil, fmt.Errorf("quota: %w", embedding.ErrUnavailable)
		default:
			return []float32{1, 0}, nil
		}
	})
	s := NewRelevanceScorer(p, 1)
	videos := []domain.VideoRecord{
		{ID: "v1", Description: "cooking"},
		{ID: "v2", Description: "cooking broken"},
		{ID: "v3", Description: "cooking"},
	}

	scores, degraded := s.ScoreBatch(context.Background(), videos, tags)
	if !degraded {
		t.Fatal("expected degraded batch")
	}
	for id, score := range scores {
		// aligned vectors would give 0.8; every video must fall back together
		if !almostEqual(score, 0.6, 1e-9) {
			t.Errorf("%s: relevance = %f, want neutral 0.6", id, score)
		}
	}
	if len(scores) != 3 {
		t.Errorf("expected 3 scores, got %d", len(scores))
	}
}

func TestRelevanceBatchNotDegraded(t *testing.T) {
	tags := []domain.UserTag{{Tag: "cooking", Affinity: 1.0}}
	videos := []domain.VideoRecord{
		{ID: "v1", Description: "cooking"},
		{ID: "v2"},
	}

	t.Run("nil provider", func(t *testing.T) {
		scores, degraded := NewRelevanceScorer(nil, 2).ScoreBatch(context.Background(), videos, tags)
		if degraded {
			t.Error("nil provider is neutral, not degraded")
		}
		if !almostEqual(scores["v1"], 0.6, 1e-9) {
			t.Errorf("relevance = %f, want 0.6", scores["v1"])
		}
	})

	t.Run("healthy provider skips blank text", func(t *testing.T) {
		p := newFakeProvider(func(string) ([]float32, error) { return []float32{1, 0}, nil })
		scores, degraded := NewRelevanceScorer(p, 2).ScoreBatch(context.Background(), videos, tags)
		if degraded {
			t.Error("healthy provider should not degrade")
		}
		if n := p.callsFor(""); n != 0 {
			t.Errorf("blank video text embedded %d times", n)
		}
		// 0.4*1 + 0.4*1
		if !almostEqual(scores["v1"], 0.8, 1e-9) {
			t.Errorf("relevance = %f, want 0.8", scores["v1"])
		}
		if !almostEqual(scores["v2"], 0.2, 1e-9) {
			t.Errorf("blank video relevance = %f, want neutral 0.2", scores["v2"])
		}
	})
}

func TestRelevanceVideoEmbedFailureIsNeutral(t *testing.T) {
	p := newFakeProvider(func(text string) ([]float32, error) {
		if strings.Contains(text, "broken") {
			return nil, errors.New("boom")
		}
		return []float32{1, 0}, nil
	})
	s := NewRelevanceScorer(p, 2)

	got := s.similarity(context.Background(), "broken video", []float32{1, 0})
	if got != neutralSimilarity {
		t.Errorf("similarity = %f, want neutral", got)
	}
	got = s.similarity(context.Background(), "fine video", []float32{0, 1})
	if !almostEqual(got, 0.5, 1e-12) {
		t.Errorf("orthogonal similarity = %f, want 0.5", got)
	}
	got = s.similarity(context.Background(), "fine video", []float32{-1, 0})
	if !almostEqual(got, 0, 1e-12) {
		t.Errorf("opposite similarity = %f, want 0", got)
	}
}

func TestUserEmbeddingComputedOncePerBatch(t *testing.T) {
	p := newFakeProvider(func(string) ([]float32, error) { return []float32{0.5, 0.5}, nil })
	s := NewRelevanceScorer(p, 3)
	tags := []domain.UserTag{{Tag: "cooking", Affinity: 0.9, Reason: "posts recipes"}}

	videos := []domain.VideoRecord{
		{ID: "v1", Description: "one"},
		{ID: "v2", Description: "two"},
		{ID: "v3", Description: "three"},
		{ID: "", Description: "no id"},
	}
	scores, degraded := s.ScoreBatch(context.Background(), videos, tags)

	if degraded {
		t.Error("unexpected degraded batch")
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	if n := p.callsFor(userInterestText(tags)); n != 1 {
		t.Errorf("user embedding computed %d times, want 1", n)
	}
	if n := p.callsFor("no id"); n != 0 {
		t.Errorf("video without id was embedded")
	}
}

func TestUserInterestText(t *testing.T) {
	tests := []struct {
		name string
		tags []domain.UserTag
		want string
	}{
		{"high affinity repeats", []domain.UserTag{{Tag: "cooking", Affinity: 0.9}}, "cooking cooking cooking"},
		{"reason included", []domain.UserTag{{Tag: "jazz", Affinity: 0.5, Reason: "plays sax"}}, "jazz plays sax jazz plays sax"},
		{"low affinity once", []domain.UserTag{{Tag: "news", Affinity: 0.1}}, "news"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userInterestText(tt.tags); got != tt.want {
				t.Errorf("userInterestText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelevanceBounds(t *testing.T) {
	p := newFakeProvider(func(string) ([]float32, error) { return []float32{1, 1}, nil })
	s := NewRelevanceScorer(p, 4)
	tags := []domain.UserTag{{Tag: "x", Affinity: 1}, {Tag: "y", Affinity: 0}}
	videos := []domain.VideoRecord{
		{ID: "a", Description: "x y", SourceTags: []string{"x"}},
		{ID: "b"},
	}
	scores, _ := s.ScoreBatch(context.Background(), videos, tags)
	for id, score := range scores {
		if score < 0 || score > 1 {
			t.Errorf("%s: relevance %f outside [0,1]", id, score)
		}
	}
}
