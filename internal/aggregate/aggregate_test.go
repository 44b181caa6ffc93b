package aggregate

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/defi-tvl-analyzer/internal/model"
	"github.com/yourorg/defi-tvl-analyzer/internal/validation"
)

func rawSeries(pairs ...float64) []model.RawPoint {
	raw := make([]model.RawPoint, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		raw = append(raw, model.RawPoint{Date: pairs[i], Value: pairs[i+1]})
	}
	return raw
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		series   model.Series
		expected model.StatSummary
	}{
		{
			name: "rise then fall",
			series: model.Series{
				{Date: 1600000000, Value: 1000000},
				{Date: 1600086400, Value: 1100000},
				{Date: 1600172800, Value: 900000},
			},
			expected: model.StatSummary{
				StartTVL:           1000000,
				CurrentTVL:         900000,
				MinTVL:             900000,
				MaxTVL:             1100000,
				AvgTVL:             1000000,
				Volatility:         math.Sqrt(20000000000.0/3) / 1000000,
				TotalChangePercent: -10,
			},
		},
		{
			name:   "single point",
			series: model.Series{{Date: 1, Value: 500}},
			expected: model.StatSummary{
				StartTVL:   500,
				CurrentTVL: 500,
				MinTVL:     500,
				MaxTVL:     500,
				AvgTVL:     500,
			},
		},
		{
			name: "constant series",
			series: model.Series{
				{Date: 1, Value: 42},
				{Date: 2, Value: 42},
				{Date: 3, Value: 42},
			},
			expected: model.StatSummary{
				StartTVL:   42,
				CurrentTVL: 42,
				MinTVL:     42,
				MaxTVL:     42,
				AvgTVL:     42,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Summarize(ChainSubject(""), tt.series)
			require.NoError(t, err)
			assert.Equal(t, tt.expected.StartTVL, got.StartTVL)
			assert.Equal(t, tt.expected.CurrentTVL, got.CurrentTVL)
			assert.Equal(t, tt.expected.MinTVL, got.MinTVL)
			assert.Equal(t, tt.expected.MaxTVL, got.MaxTVL)
			assert.Equal(t, tt.expected.AvgTVL, got.AvgTVL)
			assert.InDelta(t, tt.expected.Volatility, got.Volatility, 1e-12)
			assert.Equal(t, tt.expected.TotalChangePercent, got.TotalChangePercent)
		})
	}
}

func TestSummarize_Volatility(t *testing.T) {
	series := validation.Clean(rawSeries(1600000000, 1000, 1600086400, 2000, 1600172800, 3000))

	got, err := Summarize(ChainSubject(""), series)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, got.AvgTVL)
	assert.Greater(t, got.Volatility, 0.0)
	// population stddev sqrt(2/3)*1000, divided by mean 2000
	assert.InDelta(t, math.Sqrt(2.0/3.0)/2, got.Volatility, 1e-12)
}

func TestSummarize_EmptyInputFails(t *testing.T) {
	tests := []struct {
		name    string
		subject Subject
		raw     []model.RawPoint
		message string
	}{
		{
			name:    "empty chain series",
			subject: ChainSubject(""),
			raw:     []model.RawPoint{},
			message: "no valid TVL data found for chain",
		},
		{
			name:    "all invalid protocol series",
			subject: ProtocolSubject("Test Protocol"),
			raw: []model.RawPoint{
				{Date: "invalid", Value: float64(1000)},
				{Date: float64(1600000000), Value: "invalid"},
			},
			message: "no valid TVL data found for protocol Test Protocol",
		},
		{
			name:    "named chain",
			subject: ChainSubject("ethereum"),
			raw:     nil,
			message: "no valid TVL data found for chain ethereum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize(tt.subject, validation.Clean(tt.raw))
			require.Error(t, err)
			assert.EqualError(t, err, tt.message)
			assert.True(t, errors.Is(err, ErrNoValidData))

			var noData *NoValidDataError
			require.True(t, errors.As(err, &noData))
			assert.Equal(t, tt.subject.Scope, noData.Scope)
			assert.Equal(t, tt.subject.Name, noData.Name)
		})
	}
}

func TestSummarize_ZeroBaseline(t *testing.T) {
	series := validation.Clean(rawSeries(1, 0, 2, 500, 3, 1000))

	got, err := Summarize(ChainSubject(""), series)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.StartTVL)
	assert.Equal(t, 0.0, got.TotalChangePercent)
	assert.False(t, math.IsInf(got.TotalChangePercent, 0))
	assert.False(t, math.IsNaN(got.TotalChangePercent))
}

func TestSummarize_ZeroMeanVolatility(t *testing.T) {
	series := validation.Clean(rawSeries(1, -100, 2, 100))

	got, err := Summarize(ChainSubject(""), series)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.AvgTVL)
	assert.Equal(t, 0.0, got.Volatility)
	assert.Equal(t, -200.0, got.TotalChangePercent)
}

func TestSummarize_Idempotent(t *testing.T) {
	raw := rawSeries(5, 10, 1, 7, 3, 12, 2, 9, 4, 11)

	first, err := Summarize(ChainSubject(""), validation.Clean(raw))
	require.NoError(t, err)
	second, err := Summarize(ChainSubject(""), validation.Clean(raw))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSummarize_SortInvariance(t *testing.T) {
	raw := rawSeries(
		1600000000, 1000000,
		1600086400, 1100000,
		1600172800, 900000,
		1600259200, 950000,
		1600345600, 1250000,
	)
	expected, err := Summarize(ChainSubject(""), validation.Clean(raw))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := make([]model.RawPoint, len(raw))
		copy(shuffled, raw)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := Summarize(ChainSubject(""), validation.Clean(shuffled))
		require.NoError(t, err)
		assert.Equal(t, expected.StartTVL, got.StartTVL)
		assert.Equal(t, expected.CurrentTVL, got.CurrentTVL)
		assert.Equal(t, expected.MinTVL, got.MinTVL)
		assert.Equal(t, expected.MaxTVL, got.MaxTVL)
		assert.InDelta(t, expected.AvgTVL, got.AvgTVL, 1e-6)
		assert.InDelta(t, expected.Volatility, got.Volatility, 1e-12)
		assert.Equal(t, expected.TotalChangePercent, got.TotalChangePercent)
	}
}

func TestPopulationStdDev(t *testing.T) {
	assert.Equal(t, 0.0, PopulationStdDev(nil))
	assert.Equal(t, 2.0, PopulationStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}))
}

func TestMinMax(t *testing.T) {
	minV, maxV := MinMax([]float64{3, -1, 8, 0})
	assert.Equal(t, -1.0, minV)
	assert.Equal(t, 8.0, maxV)

	minV, maxV = MinMax(nil)
	assert.Zero(t, minV)
	assert.Zero(t, maxV)
}

func TestChangePercent(t *testing.T) {
	assert.Equal(t, 50.0, ChangePercent(100, 150))
	assert.Equal(t, 0.0, ChangePercent(0, 150))
}
