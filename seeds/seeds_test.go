package seeds

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowerLawBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for range 1000 {
		v := powerLaw(rng, 1_000_000)
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, 1_000_000.0)
	}
}

func TestWeightedChoiceDeterministic(t *testing.T) {
	choices := []string{"post", "repost", "like"}
	weights := []float64{0.2, 0.2, 0.6}

	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))
	for range 50 {
		assert.Equal(t, weightedChoice(a, choices, weights), weightedChoice(b, choices, weights))
	}
}

func TestWeightedChoiceZeroWeight(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for range 200 {
		assert.NotEqual(t, "never", weightedChoice(rng, []string{"never", "always"}, []float64{0, 1}))
	}
}

func TestCategoriesShareStreetFood(t *testing.T) {
	var owners []string
	for _, c := range categories {
		for _, tag := range c.tags {
			if tag == "street_food" {
				owners = append(owners, c.name)
			}
		}
	}
	assert.Equal(t, []string{"food", "travel"}, owners)
}
