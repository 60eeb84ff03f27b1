package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

type MetricRepository struct {
	db *gorm.DB
}

func NewMetricRepository(db *gorm.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

// Upsert writes a snapshot keyed by (metric_name, period, campaign scope,
// date). Re-running a rollup for a day overwrites the value.
func (r *MetricRepository) Upsert(snapshot *models.MetricSnapshot) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "metric_name"}, {Name: "period"}, {Name: "campaign_id"}, {Name: "date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(snapshot).Error
}

// GetSeries returns the snapshot series for one metric in chronological
// order. A nil campaignID selects the global scope.
func (r *MetricRepository) GetSeries(metricName string, campaignID *string, from, to time.Time) ([]*models.MetricSnapshot, error) {
	var snapshots []*models.MetricSnapshot
	query := r.db.Where("metric_name = ? AND period = ? AND date >= ? AND date < ?",
		metricName, models.PeriodDaily, from, to)
	if campaignID != nil {
		query = query.Where("campaign_id = ?", *campaignID)
	} else {
		query = query.Where("campaign_id IS NULL")
	}
	err := query.Order("date ASC").Find(&snapshots).Error
	return snapshots, err
}
