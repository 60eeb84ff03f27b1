package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// fakeMetricStore keys snapshots the way the unique index does, so an
// upsert for the same scope and date overwrites.
type fakeMetricStore struct {
	snapshots map[string]*models.MetricSnapshot
}

func newFakeMetricStore() *fakeMetricStore {
	return &fakeMetricStore{snapshots: map[string]*models.MetricSnapshot{}}
}

func snapshotKey(s *models.MetricSnapshot) string {
	scope := "global"
	if s.CampaignID != nil {
		scope = *s.CampaignID
	}
	return fmt.Sprintf("%s|%s|%s|%s", s.MetricName, s.Period, scope, s.Date.Format("2006-01-02"))
}

func (f *fakeMetricStore) Upsert(s *models.MetricSnapshot) error {
	f.snapshots[snapshotKey(s)] = s
	return nil
}

func (f *fakeMetricStore) GetSeries(metricName string, campaignID *string, from, to time.Time) ([]*models.MetricSnapshot, error) {
	var out []*models.MetricSnapshot
	for _, s := range f.snapshots {
		if s.MetricName != metricName {
			continue
		}
		if (campaignID == nil) != (s.CampaignID == nil) {
			continue
		}
		if campaignID != nil && *campaignID != *s.CampaignID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type fakeRollupCounts struct {
	events      int64
	visitors    int64
	clicks      int64
	conversions int64
}

func (f *fakeRollupCounts) CountEventsBetween(campaignID *string, since, until time.Time) (int64, error) {
	return f.events, nil
}

func (f *fakeRollupCounts) CountDistinctVisitorsBetween(campaignID *string, since, until time.Time) (int64, error) {
	return f.visitors, nil
}

func (f *fakeRollupCounts) CountTypeBetween(campaignID *string, eventType string, since, until time.Time) (int64, error) {
	if eventType == models.EventTypeClick {
		return f.clicks, nil
	}
	return f.conversions, nil
}

type fakeCampaignLister struct {
	active []*models.Campaign
	newCnt int64
}

func (f *fakeCampaignLister) GetAllActive() ([]*models.Campaign, error) {
	return f.active, nil
}

func (f *fakeCampaignLister) CountCreatedBetween(since, until time.Time) (int64, error) {
	return f.newCnt, nil
}

type fakeRegistrationCounter struct {
	count int64
}

func (f *fakeRegistrationCounter) CountRegisteredSince(since, until time.Time) (int64, error) {
	return f.count, nil
}

func TestRollupDay_WritesGlobalAndCampaignSnapshots(t *testing.T) {
	campaignID := uuid.NewString()
	metrics := newFakeMetricStore()
	counts := &fakeRollupCounts{events: 120, visitors: 45, clicks: 80, conversions: 12}
	campaigns := &fakeCampaignLister{active: []*models.Campaign{{ID: campaignID}}, newCnt: 2}
	users := &fakeRegistrationCounter{count: 7}

	svc := NewRollupService(metrics, counts, campaigns, users)
	day := time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)
	svc.RollupDay(day)

	// 4 global + 3 per-campaign snapshots
	assert.Len(t, metrics.snapshots, 7)

	global, _ := metrics.GetSeries(models.MetricTotalEvents, nil, day, day)
	assert.Len(t, global, 1)
	assert.Equal(t, 120.0, global[0].Value)
	assert.Equal(t, "2026-08-31", global[0].Date.Format("2006-01-02"))

	newUsers, _ := metrics.GetSeries(models.MetricNewUsers, nil, day, day)
	assert.Equal(t, 7.0, newUsers[0].Value)

	clicks, _ := metrics.GetSeries(models.MetricClicks, &campaignID, day, day)
	assert.Len(t, clicks, 1)
	assert.Equal(t, 80.0, clicks[0].Value)

	conversions, _ := metrics.GetSeries(models.MetricConversions, &campaignID, day, day)
	assert.Equal(t, 12.0, conversions[0].Value)
}

func TestRollupDay_RerunOverwrites(t *testing.T) {
	campaignID := uuid.NewString()
	metrics := newFakeMetricStore()
	counts := &fakeRollupCounts{clicks: 10}
	campaigns := &fakeCampaignLister{active: []*models.Campaign{{ID: campaignID}}}
	users := &fakeRegistrationCounter{}

	svc := NewRollupService(metrics, counts, campaigns, users)
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	svc.RollupDay(day)
	counts.clicks = 25
	svc.RollupDay(day)

	assert.Len(t, metrics.snapshots, 7)
	clicks, _ := metrics.GetSeries(models.MetricClicks, &campaignID, day, day)
	assert.Equal(t, 25.0, clicks[0].Value)
}
