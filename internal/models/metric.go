package models

import (
	"time"
)

// Metric names produced by the daily rollup. The first group is computed
// per campaign, the second globally (nil campaign scope).
const (
	MetricClicks         = "clicks"
	MetricUniqueVisitors = "unique_visitors"
	MetricConversions    = "conversions"
	MetricTotalEvents    = "total_events"
	MetricNewUsers       = "new_users"
	MetricNewCampaigns   = "new_campaigns"
)

// PeriodDaily is the only rollup period currently produced.
const PeriodDaily = "daily"

// MetricSnapshot is one pre-aggregated data point. Snapshots are upserted
// keyed by (metric_name, period, campaign scope, date), so re-running a
// rollup for a day overwrites rather than duplicates.
type MetricSnapshot struct {
	ID         string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MetricName string  `json:"metric_name" gorm:"type:varchar(50);not null;uniqueIndex:idx_metric_scope_date"`
	Period     string  `json:"period" gorm:"type:varchar(20);not null;default:daily;uniqueIndex:idx_metric_scope_date"`
	CampaignID *string `json:"campaign_id" gorm:"type:uuid;uniqueIndex:idx_metric_scope_date"`

	Date  time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:idx_metric_scope_date"`
	Value float64   `json:"value" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the MetricSnapshot model
func (MetricSnapshot) TableName() string {
	return "referral_metric_snapshots"
}

// MetricPoint is a (date, value) pair in a time series response.
type MetricPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ForecastPoint is one predicted future value.
type ForecastPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ForecastResult carries a prediction for a single metric. Insufficient
// history is a normal result with Available=false.
type ForecastResult struct {
	MetricName string          `json:"metric_name"`
	Available  bool            `json:"available"`
	Reason     string          `json:"reason,omitempty"`
	Points     []ForecastPoint `json:"points,omitempty"`
	Trend      string          `json:"trend,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
}
