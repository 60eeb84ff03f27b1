package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

type fakeTrackingStore struct {
	clicks    int64
	unique    int64
	convs     int64
	bots      int64
	byField   map[string]map[string]int
	daily     []models.MetricPoint
	linkDaily []models.MetricPoint
}

func (f *fakeTrackingStore) CountByCampaign(campaignID, eventType string, from, to time.Time) (int64, error) {
	if eventType == models.EventTypeConversion {
		return f.convs, nil
	}
	return f.clicks, nil
}

func (f *fakeTrackingStore) CountUniqueByCampaign(campaignID string, from, to time.Time) (int64, error) {
	return f.unique, nil
}

func (f *fakeTrackingStore) CountBotsByCampaign(campaignID string, from, to time.Time) (int64, error) {
	return f.bots, nil
}

func (f *fakeTrackingStore) GroupByField(campaignID, field, eventType string, from, to time.Time) (map[string]int, error) {
	if m, ok := f.byField[field]; ok {
		return m, nil
	}
	return map[string]int{}, nil
}

func (f *fakeTrackingStore) ClicksByDay(campaignID string, from, to time.Time) ([]models.MetricPoint, error) {
	return f.daily, nil
}

func (f *fakeTrackingStore) LinkClicksByDay(linkID string, from, to time.Time) ([]models.MetricPoint, error) {
	return f.linkDaily, nil
}

type fakeDashboardStore struct {
	total   int64
	active  int64
	clicks  int64
	convs   int64
	rewards int64
	top     []*models.Campaign
}

func (f *fakeDashboardStore) CountByUser(userID string) (int64, int64, error) {
	return f.total, f.active, nil
}

func (f *fakeDashboardStore) SumCountersByUser(userID string) (int64, int64, int64, error) {
	return f.clicks, f.convs, f.rewards, nil
}

func (f *fakeDashboardStore) GetTopByClicks(userID string, limit int) ([]*models.Campaign, error) {
	return f.top, nil
}

func newAnalyticsFixture(t *testing.T) (*AnalyticsService, *fakeTrackingStore, *fakeCampaignStore, *fakeLinkStore, *fakeChannelStore, *models.Campaign) {
	t.Helper()

	campaignStore := newFakeCampaignStore()
	campaign := &models.Campaign{UserID: "user-1", Title: "Summer Promo", IsActive: true}
	require.NoError(t, campaignStore.Create(campaign))

	tracking := &fakeTrackingStore{
		clicks: 100, unique: 60, convs: 10, bots: 5,
		byField: map[string]map[string]int{
			"event_type":  {"click": 100, "conversion": 10},
			"device_type": {"desktop": 70, "mobile": 30},
			"country":     {"RU": 80, "US": 20},
			"browser":     {"Chrome": 90, "Firefox": 10},
		},
		daily: []models.MetricPoint{{Date: "2026-08-30", Value: 40}, {Date: "2026-08-31", Value: 60}},
	}
	links := newFakeLinkStore()
	channels := &fakeChannelStore{channels: map[string]*models.Channel{}}
	dash := &fakeDashboardStore{}

	svc := NewAnalyticsService(tracking, campaignStore, dash, links, channels)
	return svc, tracking, campaignStore, links, channels, campaign
}

func TestGetCampaignAnalytics(t *testing.T) {
	svc, _, _, links, channels, campaign := newAnalyticsFixture(t)

	for _, clicks := range []int{50, 30, 20} {
		require.NoError(t, links.Create(&models.Link{
			CampaignID:  campaign.ID,
			LinkName:    "link",
			ShortCode:   uuid.NewString()[:8],
			TotalClicks: clicks,
		}))
	}
	require.NoError(t, channels.Create(&models.Channel{
		CampaignID:       campaign.ID,
		ChannelType:      models.ChannelTypeTelegram,
		ChannelName:      "TG",
		TotalClicks:      100,
		TotalConversions: 10,
	}))

	analytics, err := svc.GetCampaignAnalytics("user-1", campaign.ID, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 100, analytics.TotalClicks)
	assert.Equal(t, 60, analytics.UniqueClicks)
	assert.Equal(t, 10, analytics.Conversions)
	assert.Equal(t, 5, analytics.BotClicks)
	assert.Equal(t, 10.0, analytics.ConversionRate)
	assert.Equal(t, 60.0, analytics.UniqueRate)
	assert.Len(t, analytics.ClicksByDay, 2)
	assert.Equal(t, 70, analytics.ClicksByDevice["desktop"])

	require.Len(t, analytics.TopLinks, 3)
	assert.Equal(t, 50, analytics.TopLinks[0].TotalClicks)
	assert.Equal(t, 20, analytics.TopLinks[2].TotalClicks)

	require.Len(t, analytics.ChannelBreakdown, 1)
	assert.Equal(t, 10.0, analytics.ChannelBreakdown[0].ConversionRate)
}

func TestGetCampaignAnalytics_NotOwner(t *testing.T) {
	svc, _, _, _, _, campaign := newAnalyticsFixture(t)

	_, err := svc.GetCampaignAnalytics("someone-else", campaign.ID, nil, nil)
	assert.ErrorContains(t, err, "campaign not found")
}

func TestGetLinkAnalytics_ScopedToCampaign(t *testing.T) {
	svc, tracking, _, links, _, campaign := newAnalyticsFixture(t)
	tracking.linkDaily = []models.MetricPoint{{Date: "2026-08-31", Value: 5}}

	link := &models.Link{
		CampaignID:   campaign.ID,
		LinkName:     "Promo",
		ShortCode:    "abc12345",
		TotalClicks:  10,
		UniqueClicks: 8,
	}
	require.NoError(t, links.Create(link))

	analytics, err := svc.GetLinkAnalytics("user-1", campaign.ID, link.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, analytics.TotalClicks)
	assert.Equal(t, 80.0, analytics.UniqueRate)
	assert.Len(t, analytics.ClicksByDay, 1)

	foreign := &models.Link{CampaignID: uuid.NewString(), LinkName: "other", ShortCode: "zzz99999"}
	require.NoError(t, links.Create(foreign))
	_, err = svc.GetLinkAnalytics("user-1", campaign.ID, foreign.ID, nil, nil)
	assert.ErrorContains(t, err, "link not found")
}

func TestGetDashboard(t *testing.T) {
	campaignStore := newFakeCampaignStore()
	dash := &fakeDashboardStore{
		total: 4, active: 3, clicks: 200, convs: 20, rewards: 150,
		top: []*models.Campaign{
			{ID: uuid.NewString(), Title: "Top", TotalClicks: 120, TotalConversions: 12},
		},
	}
	svc := NewAnalyticsService(&fakeTrackingStore{}, campaignStore, dash, newFakeLinkStore(), &fakeChannelStore{channels: map[string]*models.Channel{}})

	dashboard, err := svc.GetDashboard("user-1")
	require.NoError(t, err)

	assert.Equal(t, 4, dashboard.TotalCampaigns)
	assert.Equal(t, 3, dashboard.ActiveCampaigns)
	assert.Equal(t, 200, dashboard.TotalClicks)
	assert.Equal(t, 10.0, dashboard.ConversionRate)
	require.Len(t, dashboard.TopCampaigns, 1)
	assert.Equal(t, "Top", dashboard.TopCampaigns[0].Title)
	assert.Equal(t, 10.0, dashboard.TopCampaigns[0].ConversionRate)
}

func TestNormalizeRange(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	start, end := NormalizeRange(&from, &to)
	assert.Equal(t, from, start)
	assert.Equal(t, to, end)

	start, end = NormalizeRange(nil, nil)
	assert.WithinDuration(t, time.Now(), end, time.Second)
	assert.WithinDuration(t, end.AddDate(0, 0, -30), start, time.Second)
}
