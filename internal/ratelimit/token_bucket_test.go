package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilBucketAllowsEverything(t *testing.T) {
	var bucket *TokenBucket

	res, err := bucket.Allow(context.Background(), "login:1.2.3.4:a@b.test", 0.5, 5)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewTokenBucketNilClient(t *testing.T) {
	assert.Nil(t, NewTokenBucket(nil))
}

func TestBucketTTLCoversFullRefill(t *testing.T) {
	// Refilling 10 tokens at 0.5/s takes 20s; the key must outlive that.
	ttl := bucketTTL(0.5, 10)
	assert.GreaterOrEqual(t, ttl, 20*time.Second)
}
