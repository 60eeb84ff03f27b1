package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

type TrackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) *TrackingRepository {
	return &TrackingRepository{db: db}
}

// Create appends a tracking event
func (r *TrackingRepository) Create(event *models.TrackingEvent) error {
	return r.db.Create(event).Error
}

// GetByCampaignID retrieves a campaign's events inside a date range
func (r *TrackingRepository) GetByCampaignID(campaignID string, from, to time.Time) ([]*models.TrackingEvent, error) {
	var events []*models.TrackingEvent
	err := r.db.Where("campaign_id = ? AND created_at >= ? AND created_at < ?", campaignID, from, to).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

// countRow is the scan target for grouped counts
type countRow struct {
	Key   string
	Count int
}

// dateCountRow is the scan target for per-day counts
type dateCountRow struct {
	Day   time.Time
	Count int
}

// CountByCampaign counts events of one type in a range
func (r *TrackingRepository) CountByCampaign(campaignID, eventType string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.TrackingEvent{}).
		Where("campaign_id = ? AND event_type = ? AND created_at >= ? AND created_at < ?", campaignID, eventType, from, to).
		Count(&count).Error
	return count, err
}

// CountUniqueByCampaign counts unique (non-bot) clicks in a range
func (r *TrackingRepository) CountUniqueByCampaign(campaignID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.TrackingEvent{}).
		Where("campaign_id = ? AND event_type = ? AND is_unique = ? AND created_at >= ? AND created_at < ?",
			campaignID, models.EventTypeClick, true, from, to).
		Count(&count).Error
	return count, err
}

// CountBotsByCampaign counts bot-flagged clicks in a range
func (r *TrackingRepository) CountBotsByCampaign(campaignID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.TrackingEvent{}).
		Where("campaign_id = ? AND event_type = ? AND is_bot = ? AND created_at >= ? AND created_at < ?",
			campaignID, models.EventTypeClick, true, from, to).
		Count(&count).Error
	return count, err
}

// GroupByField counts events grouped by an enrichment column. The column
// name is always a compile-time constant at call sites, never user input.
func (r *TrackingRepository) GroupByField(campaignID, field, eventType string, from, to time.Time) (map[string]int, error) {
	var rows []countRow
	query := r.db.Model(&models.TrackingEvent{}).
		Select(field+" as key, COUNT(*) as count").
		Where("campaign_id = ? AND created_at >= ? AND created_at < ?", campaignID, from, to)
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	err := query.Group(field).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		key := row.Key
		if key == "" {
			key = "unknown"
		}
		out[key] = row.Count
	}
	return out, nil
}

// ClicksByDay returns the campaign's daily click series inside a range
func (r *TrackingRepository) ClicksByDay(campaignID string, from, to time.Time) ([]models.MetricPoint, error) {
	var rows []dateCountRow
	err := r.db.Model(&models.TrackingEvent{}).
		Select("DATE(created_at) as day, COUNT(*) as count").
		Where("campaign_id = ? AND event_type = ? AND created_at >= ? AND created_at < ?",
			campaignID, models.EventTypeClick, from, to).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toMetricPoints(rows), nil
}

// LinkClicksByDay returns one link's daily click series inside a range
func (r *TrackingRepository) LinkClicksByDay(linkID string, from, to time.Time) ([]models.MetricPoint, error) {
	var rows []dateCountRow
	err := r.db.Model(&models.TrackingEvent{}).
		Select("DATE(created_at) as day, COUNT(*) as count").
		Where("link_id = ? AND event_type = ? AND created_at >= ? AND created_at < ?",
			linkID, models.EventTypeClick, from, to).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toMetricPoints(rows), nil
}

// CountEventsBetween counts all events inside [since, until), optionally
// scoped to one campaign.
func (r *TrackingRepository) CountEventsBetween(campaignID *string, since, until time.Time) (int64, error) {
	var count int64
	query := r.db.Model(&models.TrackingEvent{}).
		Where("created_at >= ? AND created_at < ?", since, until)
	if campaignID != nil {
		query = query.Where("campaign_id = ?", *campaignID)
	}
	err := query.Count(&count).Error
	return count, err
}

// CountDistinctVisitorsBetween counts distinct click hashes inside
// [since, until), optionally scoped to one campaign.
func (r *TrackingRepository) CountDistinctVisitorsBetween(campaignID *string, since, until time.Time) (int64, error) {
	var count int64
	query := r.db.Model(&models.TrackingEvent{}).
		Where("event_type = ? AND created_at >= ? AND created_at < ?", models.EventTypeClick, since, until)
	if campaignID != nil {
		query = query.Where("campaign_id = ?", *campaignID)
	}
	err := query.Distinct("click_hash").Count(&count).Error
	return count, err
}

// CountTypeBetween counts events of one type inside [since, until),
// optionally scoped to one campaign.
func (r *TrackingRepository) CountTypeBetween(campaignID *string, eventType string, since, until time.Time) (int64, error) {
	var count int64
	query := r.db.Model(&models.TrackingEvent{}).
		Where("event_type = ? AND created_at >= ? AND created_at < ?", eventType, since, until)
	if campaignID != nil {
		query = query.Where("campaign_id = ?", *campaignID)
	}
	err := query.Count(&count).Error
	return count, err
}

func toMetricPoints(rows []dateCountRow) []models.MetricPoint {
	points := make([]models.MetricPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, models.MetricPoint{
			Date:  row.Day.Format("2006-01-02"),
			Value: float64(row.Count),
		})
	}
	return points
}
