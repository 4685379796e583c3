package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	for _, value := range []string{"LOW", "NORMAL", "HIGH", "CRITICAL"} {
		p, err := ParsePriority(value)
		require.NoError(t, err)
		assert.Equal(t, Priority(value), p)
	}

	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityNormal, p)

	_, err = ParsePriority("URGENT")
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestPriorityRetryPolicy(t *testing.T) {
	tests := []struct {
		priority   Priority
		maxRetries int
		base       time.Duration
	}{
		{PriorityLow, 1, 5 * time.Minute},
		{PriorityNormal, 3, time.Minute},
		{PriorityHigh, 5, 30 * time.Second},
		{PriorityCritical, 8, 10 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.maxRetries, tt.priority.MaxRetries(), string(tt.priority))
		assert.Equal(t, tt.base, tt.priority.BackoffBase(), string(tt.priority))
	}
}

func TestNextRetryAtExponentialBackoff(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(time.Minute), NextRetryAt(PriorityNormal, 1, now))
	assert.Equal(t, now.Add(2*time.Minute), NextRetryAt(PriorityNormal, 2, now))
	assert.Equal(t, now.Add(4*time.Minute), NextRetryAt(PriorityNormal, 3, now))

	// retryCount 小于 1 时按首次重试处理
	assert.Equal(t, now.Add(time.Minute), NextRetryAt(PriorityNormal, 0, now))
}

func TestNextRetryAtCappedAtSixHours(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 5m * 2^19 远超上限
	got := NextRetryAt(PriorityLow, 20, now)
	assert.Equal(t, now.Add(6*time.Hour), got)
}

func TestPriorityScoreOrdering(t *testing.T) {
	assert.Greater(t, PriorityCritical.Score(), PriorityHigh.Score())
	assert.Greater(t, PriorityHigh.Score(), PriorityNormal.Score())
	assert.Greater(t, PriorityNormal.Score(), PriorityLow.Score())
}
