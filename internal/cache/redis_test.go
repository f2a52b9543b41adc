package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "rec:user:chef:limit:10", buildKey("chef", 10))
}

func TestNewCacheDefaultTTL(t *testing.T) {
	assert.Equal(t, defaultTTL, NewCache(nil, 0).ttl)
	assert.Equal(t, time.Minute, NewCache(nil, time.Minute).ttl)
}
