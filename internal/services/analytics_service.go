package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// TrackingStore is the aggregation surface the analytics service needs.
type TrackingStore interface {
	CountByCampaign(campaignID, eventType string, from, to time.Time) (int64, error)
	CountUniqueByCampaign(campaignID string, from, to time.Time) (int64, error)
	CountBotsByCampaign(campaignID string, from, to time.Time) (int64, error)
	GroupByField(campaignID, field, eventType string, from, to time.Time) (map[string]int, error)
	ClicksByDay(campaignID string, from, to time.Time) ([]models.MetricPoint, error)
	LinkClicksByDay(linkID string, from, to time.Time) ([]models.MetricPoint, error)
}

// DashboardStore is the owner-level aggregation surface.
type DashboardStore interface {
	CountByUser(userID string) (total, active int64, err error)
	SumCountersByUser(userID string) (clicks, conversions, rewards int64, err error)
	GetTopByClicks(userID string, limit int) ([]*models.Campaign, error)
}

type AnalyticsService struct {
	trackingRepo TrackingStore
	campaignRepo CampaignStore
	dashRepo     DashboardStore
	linkRepo     LinkStore
	channelRepo  ChannelStore
}

func NewAnalyticsService(trackingRepo TrackingStore, campaignRepo CampaignStore, dashRepo DashboardStore, linkRepo LinkStore, channelRepo ChannelStore) *AnalyticsService {
	return &AnalyticsService{
		trackingRepo: trackingRepo,
		campaignRepo: campaignRepo,
		dashRepo:     dashRepo,
		linkRepo:     linkRepo,
		channelRepo:  channelRepo,
	}
}

// NormalizeRange fills range defaults: a missing start means 30 days back,
// a missing end means now. The end bound is exclusive.
func NormalizeRange(from, to *time.Time) (time.Time, time.Time) {
	end := time.Now()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = *from
	}
	return start, end
}

// GetCampaignAnalytics aggregates a campaign's tracking stream over a range
func (s *AnalyticsService) GetCampaignAnalytics(userID, campaignID string, from, to *time.Time) (*models.CampaignAnalytics, error) {
	campaign, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID)
	if err != nil {
		return nil, errors.New("campaign not found")
	}

	start, end := NormalizeRange(from, to)

	totalClicks, err := s.trackingRepo.CountByCampaign(campaignID, models.EventTypeClick, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks: %w", err)
	}
	uniqueClicks, err := s.trackingRepo.CountUniqueByCampaign(campaignID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count unique clicks: %w", err)
	}
	conversions, err := s.trackingRepo.CountByCampaign(campaignID, models.EventTypeConversion, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversions: %w", err)
	}
	botClicks, err := s.trackingRepo.CountBotsByCampaign(campaignID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count bot clicks: %w", err)
	}

	clicksByDay, err := s.trackingRepo.ClicksByDay(campaignID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to build daily series: %w", err)
	}
	eventsByType, err := s.trackingRepo.GroupByField(campaignID, "event_type", "", start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to group by event type: %w", err)
	}
	byDevice, err := s.trackingRepo.GroupByField(campaignID, "device_type", models.EventTypeClick, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to group by device: %w", err)
	}
	byCountry, err := s.trackingRepo.GroupByField(campaignID, "country", models.EventTypeClick, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to group by country: %w", err)
	}
	byBrowser, err := s.trackingRepo.GroupByField(campaignID, "browser", models.EventTypeClick, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to group by browser: %w", err)
	}

	topLinks, err := s.topLinks(campaignID, 5)
	if err != nil {
		return nil, err
	}
	channelBreakdown, err := s.channelBreakdown(campaignID)
	if err != nil {
		return nil, err
	}

	return &models.CampaignAnalytics{
		CampaignID:       campaign.ID,
		CampaignTitle:    campaign.Title,
		PeriodStart:      start.Format("2006-01-02"),
		PeriodEnd:        end.Format("2006-01-02"),
		TotalClicks:      int(totalClicks),
		UniqueClicks:     int(uniqueClicks),
		Conversions:      int(conversions),
		BotClicks:        int(botClicks),
		ConversionRate:   rate(int(conversions), int(totalClicks)),
		UniqueRate:       rate(int(uniqueClicks), int(totalClicks)),
		ClicksByDay:      clicksByDay,
		EventsByType:     eventsByType,
		ClicksByDevice:   byDevice,
		ClicksByCountry:  byCountry,
		ClicksByBrowser:  byBrowser,
		TopLinks:         topLinks,
		ChannelBreakdown: channelBreakdown,
	}, nil
}

// GetLinkAnalytics aggregates one link's counters plus its daily series
func (s *AnalyticsService) GetLinkAnalytics(userID, campaignID, linkID string, from, to *time.Time) (*models.LinkAnalytics, error) {
	if _, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID); err != nil {
		return nil, errors.New("campaign not found")
	}
	link, err := s.linkRepo.GetByID(linkID)
	if err != nil || link.CampaignID != campaignID {
		return nil, errors.New("link not found")
	}

	start, end := NormalizeRange(from, to)
	clicksByDay, err := s.trackingRepo.LinkClicksByDay(linkID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to build daily series: %w", err)
	}

	return &models.LinkAnalytics{
		LinkID:         link.ID,
		LinkName:       link.LinkName,
		ShortCode:      link.ShortCode,
		PeriodStart:    start.Format("2006-01-02"),
		PeriodEnd:      end.Format("2006-01-02"),
		TotalClicks:    link.TotalClicks,
		UniqueClicks:   link.UniqueClicks,
		Conversions:    link.TotalConversions,
		ConversionRate: link.ConversionRate(),
		UniqueRate:     link.UniqueRate(),
		ClicksByDay:    clicksByDay,
	}, nil
}

// GetDashboard summarizes all of an owner's campaigns
func (s *AnalyticsService) GetDashboard(userID string) (*models.DashboardResponse, error) {
	total, active, err := s.dashRepo.CountByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count campaigns: %w", err)
	}
	clicks, conversions, rewards, err := s.dashRepo.SumCountersByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum counters: %w", err)
	}
	top, err := s.dashRepo.GetTopByClicks(userID, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to get top campaigns: %w", err)
	}

	topResponses := make([]models.CampaignResponse, 0, len(top))
	for _, c := range top {
		topResponses = append(topResponses, models.CampaignResponse{
			ID:               c.ID,
			Title:            c.Title,
			CampaignType:     c.CampaignType,
			IsActive:         c.IsActive,
			PublicSlug:       c.PublicSlug,
			TotalClicks:      c.TotalClicks,
			TotalConversions: c.TotalConversions,
			ConversionRate:   c.ConversionRate(),
		})
	}

	return &models.DashboardResponse{
		TotalCampaigns:    int(total),
		ActiveCampaigns:   int(active),
		TotalClicks:       int(clicks),
		TotalConversions:  int(conversions),
		TotalRewardsGiven: int(rewards),
		ConversionRate:    rate(int(conversions), int(clicks)),
		TopCampaigns:      topResponses,
	}, nil
}

func (s *AnalyticsService) topLinks(campaignID string, limit int) ([]models.LinkStat, error) {
	links, err := s.linkRepo.GetByCampaignID(campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	// Sort by clicks without disturbing the repo ordering
	stats := make([]models.LinkStat, 0, len(links))
	for _, l := range links {
		stats = append(stats, models.LinkStat{
			LinkID:         l.ID,
			LinkName:       l.LinkName,
			ShortCode:      l.ShortCode,
			TotalClicks:    l.TotalClicks,
			UniqueClicks:   l.UniqueClicks,
			Conversions:    l.TotalConversions,
			ConversionRate: l.ConversionRate(),
		})
	}
	for i := 0; i < len(stats); i++ {
		for j := i + 1; j < len(stats); j++ {
			if stats[j].TotalClicks > stats[i].TotalClicks {
				stats[i], stats[j] = stats[j], stats[i]
			}
		}
	}
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (s *AnalyticsService) channelBreakdown(campaignID string) ([]models.ChannelStat, error) {
	channels, err := s.channelRepo.GetByCampaignID(campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	stats := make([]models.ChannelStat, 0, len(channels))
	for _, ch := range channels {
		stats = append(stats, models.ChannelStat{
			ChannelID:      ch.ID,
			ChannelName:    ch.ChannelName,
			ChannelType:    ch.ChannelType,
			TotalClicks:    ch.TotalClicks,
			Conversions:    ch.TotalConversions,
			ConversionRate: ch.ConversionRate(),
		})
	}
	return stats, nil
}

// rate mirrors the zero-guarded percentage used on model counters
func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}
