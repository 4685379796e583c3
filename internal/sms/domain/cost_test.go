package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCostEstimatorLongestPrefixWins(t *testing.T) {
	estimator := NewCostEstimator(map[string]decimal.Decimal{
		"+1":  decimal.NewFromFloat(0.01),
		"+86": decimal.NewFromFloat(0.03),
		"+8":  decimal.NewFromFloat(0.09),
	}, decimal.NewFromFloat(0.05))

	phone, err := NewPhoneNumber("+8613812345678")
	require.NoError(t, err)
	content, err := NewSmsContent("hello")
	require.NoError(t, err)

	// +86 比 +8 更长，优先命中
	cost := estimator.Estimate(phone, content)
	require.True(t, cost.Equal(decimal.NewFromFloat(0.03)), cost.String())
}

func TestCostEstimatorScalesWithSegments(t *testing.T) {
	estimator := NewDefaultCostEstimator()

	phone, err := NewPhoneNumber("+14155552671")
	require.NoError(t, err)
	content, err := NewSmsContent(strings.Repeat("a", 306)) // 2 段
	require.NoError(t, err)
	require.Equal(t, 2, content.Segments())

	cost := estimator.Estimate(phone, content)
	require.True(t, cost.Equal(decimal.NewFromFloat(0.015)), cost.String())
}

func TestCostEstimatorDefaultRate(t *testing.T) {
	estimator := NewDefaultCostEstimator()

	phone, err := NewPhoneNumber("+61412345678") // 无费率表条目
	require.NoError(t, err)
	content, err := NewSmsContent("g'day")
	require.NoError(t, err)

	cost := estimator.Estimate(phone, content)
	require.True(t, cost.Equal(decimal.NewFromFloat(0.05)), cost.String())
}
