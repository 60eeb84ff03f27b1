package services

import (
	"errors"
	"math"
	"time"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// Forecaster predicts future values of a metric series.
type Forecaster interface {
	Forecast(points []models.MetricPoint, horizonDays int) *models.ForecastResult
}

// minForecastPoints is the history needed before a trend is worth
// extrapolating.
const minForecastPoints = 7

// LinearForecaster fits a least-squares line through the series and
// extrapolates it, clamping predictions at zero. Confidence derives from
// the normalized residual error of the fit.
type LinearForecaster struct{}

func NewLinearForecaster() *LinearForecaster {
	return &LinearForecaster{}
}

func (f *LinearForecaster) Forecast(points []models.MetricPoint, horizonDays int) *models.ForecastResult {
	if horizonDays < 1 {
		horizonDays = 30
	}
	if len(points) < minForecastPoints {
		return &models.ForecastResult{
			Available: false,
			Reason:    "not enough historical data",
		}
	}

	slope, intercept := fitLine(points)

	lastDate, err := time.Parse("2006-01-02", points[len(points)-1].Date)
	if err != nil {
		lastDate = time.Now()
	}

	n := len(points)
	out := make([]models.ForecastPoint, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		predicted := slope*float64(n+i-1) + intercept
		if predicted < 0 {
			predicted = 0
		}
		out = append(out, models.ForecastPoint{
			Date:  lastDate.AddDate(0, 0, i).Format("2006-01-02"),
			Value: math.Round(predicted*100) / 100,
		})
	}

	trend := "flat"
	if slope > 0.01 {
		trend = "growing"
	} else if slope < -0.01 {
		trend = "declining"
	}

	return &models.ForecastResult{
		Available:  true,
		Points:     out,
		Trend:      trend,
		Confidence: fitConfidence(points, slope, intercept),
	}
}

// fitLine runs ordinary least squares over (index, value) pairs
func fitLine(points []models.MetricPoint) (slope, intercept float64) {
	n := float64(len(points))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range points {
		x := float64(i)
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// fitConfidence maps the normalized RMSE of the fit into [0.1, 0.95]
func fitConfidence(points []models.MetricPoint, slope, intercept float64) float64 {
	var sumSq, sum float64
	for i, p := range points {
		predicted := slope*float64(i) + intercept
		diff := p.Value - predicted
		sumSq += diff * diff
		sum += p.Value
	}
	mean := sum / float64(len(points))
	if mean <= 0 {
		return 0.1
	}
	rmse := math.Sqrt(sumSq / float64(len(points)))
	confidence := 1.0 - rmse/mean
	if confidence < 0.1 {
		confidence = 0.1
	}
	if confidence > 0.95 {
		confidence = 0.95
	}
	return math.Round(confidence*100) / 100
}

// ForecastService bridges the analytics store and a Forecaster for the
// campaign forecast endpoint.
type ForecastService struct {
	trackingRepo TrackingStore
	campaignRepo CampaignStore
	forecaster   Forecaster
}

func NewForecastService(trackingRepo TrackingStore, campaignRepo CampaignStore, forecaster Forecaster) *ForecastService {
	return &ForecastService{
		trackingRepo: trackingRepo,
		campaignRepo: campaignRepo,
		forecaster:   forecaster,
	}
}

// ForecastCampaignClicks predicts a campaign's daily clicks from the last
// 90 days of history.
func (s *ForecastService) ForecastCampaignClicks(userID, campaignID string, horizonDays int) (*models.ForecastResult, error) {
	if _, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID); err != nil {
		return nil, errors.New("campaign not found")
	}

	end := time.Now()
	start := end.AddDate(0, 0, -90)
	series, err := s.trackingRepo.ClicksByDay(campaignID, start, end)
	if err != nil {
		return nil, err
	}

	result := s.forecaster.Forecast(series, horizonDays)
	result.MetricName = models.MetricClicks
	return result, nil
}
