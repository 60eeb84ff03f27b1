package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

func dailySeries(start string, values ...float64) []models.MetricPoint {
	day, _ := time.Parse("2006-01-02", start)
	points := make([]models.MetricPoint, len(values))
	for i, v := range values {
		points[i] = models.MetricPoint{Date: day.AddDate(0, 0, i).Format("2006-01-02"), Value: v}
	}
	return points
}

func TestForecast_NotEnoughHistory(t *testing.T) {
	f := NewLinearForecaster()

	result := f.Forecast(dailySeries("2026-08-01", 5, 6, 7), 30)
	assert.False(t, result.Available)
	assert.Equal(t, "not enough historical data", result.Reason)
	assert.Empty(t, result.Points)
}

func TestForecast_GrowingTrend(t *testing.T) {
	f := NewLinearForecaster()

	result := f.Forecast(dailySeries("2026-08-01", 10, 12, 14, 16, 18, 20, 22), 7)
	require.True(t, result.Available)

	assert.Equal(t, "growing", result.Trend)
	assert.Len(t, result.Points, 7)
	assert.Equal(t, "2026-08-08", result.Points[0].Date)
	assert.Equal(t, 24.0, result.Points[0].Value)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestForecast_DecliningClampsAtZero(t *testing.T) {
	f := NewLinearForecaster()

	result := f.Forecast(dailySeries("2026-08-01", 12, 10, 8, 6, 4, 2, 0), 10)
	require.True(t, result.Available)

	assert.Equal(t, "declining", result.Trend)
	for i, p := range result.Points {
		assert.GreaterOrEqual(t, p.Value, 0.0, fmt.Sprintf("point %d", i))
	}
	assert.Equal(t, 0.0, result.Points[9].Value)
}

func TestForecast_FlatTrend(t *testing.T) {
	f := NewLinearForecaster()

	result := f.Forecast(dailySeries("2026-08-01", 5, 5, 5, 5, 5, 5, 5), 3)
	require.True(t, result.Available)
	assert.Equal(t, "flat", result.Trend)
	assert.Equal(t, 5.0, result.Points[0].Value)
}

func TestForecast_ConfidenceBounds(t *testing.T) {
	f := NewLinearForecaster()

	// wildly noisy series: confidence floors at 0.1
	noisy := f.Forecast(dailySeries("2026-08-01", 0, 100, 0, 100, 0, 100, 0), 5)
	require.True(t, noisy.Available)
	assert.GreaterOrEqual(t, noisy.Confidence, 0.1)
	assert.LessOrEqual(t, noisy.Confidence, 0.95)

	// all-zero series cannot be scored
	zeros := f.Forecast(dailySeries("2026-08-01", 0, 0, 0, 0, 0, 0, 0), 5)
	require.True(t, zeros.Available)
	assert.Equal(t, 0.1, zeros.Confidence)
}

func TestForecast_DefaultHorizon(t *testing.T) {
	f := NewLinearForecaster()

	result := f.Forecast(dailySeries("2026-08-01", 1, 2, 3, 4, 5, 6, 7), 0)
	require.True(t, result.Available)
	assert.Len(t, result.Points, 30)
}
