package services

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dinorefs/dinorefs-backend/internal/models"
	"github.com/dinorefs/dinorefs-backend/internal/utils"
)

// LinkStore is the persistence surface the link service needs. RegisterClick
// and RegisterConversion are transactional on the store side.
type LinkStore interface {
	Create(link *models.Link) error
	GetByID(id string) (*models.Link, error)
	GetByShortCode(code string) (*models.Link, error)
	GetByCampaignID(campaignID string) ([]*models.Link, error)
	Update(link *models.Link) error
	Delete(id string) error
	CheckShortCodeExists(code string) (bool, error)
	RegisterClick(link *models.Link, event *models.TrackingEvent) (bool, error)
	RegisterConversion(link *models.Link, event *models.TrackingEvent) error
}

// ChannelCounterStore bumps denormalized channel counters.
type ChannelCounterStore interface {
	IncrementCounters(channelID string, clicks, conversions int) error
}

// MilestoneNotifier tells a campaign owner their campaign crossed a click
// milestone. A nil notifier disables milestone notifications.
type MilestoneNotifier interface {
	NotifyCampaignMilestone(userID, campaignTitle string, milestone int) error
}

var clickMilestones = []int{100, 1000, 10000, 100000}

type LinkService struct {
	linkRepo     LinkStore
	campaignRepo CampaignCounterStore
	channelRepo  ChannelCounterStore
	geo          GeoResolver
	notifier     MilestoneNotifier
	baseDomain   string
}

func NewLinkService(linkRepo LinkStore, campaignRepo CampaignCounterStore, channelRepo ChannelCounterStore, geo GeoResolver, notifier MilestoneNotifier) *LinkService {
	baseDomain := os.Getenv("BASE_DOMAIN")
	if baseDomain == "" {
		baseDomain = "http://localhost:8080"
	}
	return &LinkService{
		linkRepo:     linkRepo,
		campaignRepo: campaignRepo,
		channelRepo:  channelRepo,
		geo:          geo,
		notifier:     notifier,
		baseDomain:   baseDomain,
	}
}

// CreateLink creates a tracked link under a campaign
func (s *LinkService) CreateLink(campaignID, userID string, req *models.CreateLinkRequest) (*models.Link, error) {
	code, err := s.generateUniqueShortCode()
	if err != nil {
		return nil, err
	}

	link := &models.Link{
		CampaignID:  campaignID,
		ChannelID:   req.ChannelID,
		UserID:      userID,
		LinkName:    req.LinkName,
		Description: req.Description,
		ShortCode:   code,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		UTMTerm:     req.UTMTerm,
		UTMContent:  req.UTMContent,
		IsActive:    true,
		ExpiresAt:   req.ExpiresAt,
		MaxClicks:   req.MaxClicks,
	}
	link.FullURL = link.BuildFullURL()
	link.QRCodeURL = link.QRCodeServiceURL(s.baseDomain)

	if err := s.linkRepo.Create(link); err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}
	return link, nil
}

// GetLinks lists a campaign's links
func (s *LinkService) GetLinks(campaignID string) ([]*models.Link, error) {
	links, err := s.linkRepo.GetByCampaignID(campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}
	return links, nil
}

// GetLink retrieves one link scoped to a campaign
func (s *LinkService) GetLink(campaignID, linkID string) (*models.Link, error) {
	link, err := s.linkRepo.GetByID(linkID)
	if err != nil || link.CampaignID != campaignID {
		return nil, errors.New("link not found")
	}
	return link, nil
}

// UpdateLink updates a link. A change to any UTM field rebuilds full_url;
// the short code never changes.
func (s *LinkService) UpdateLink(campaignID, linkID string, req *models.UpdateLinkRequest) (*models.Link, error) {
	link, err := s.GetLink(campaignID, linkID)
	if err != nil {
		return nil, err
	}

	if req.LinkName != nil {
		link.LinkName = *req.LinkName
	}
	if req.Description != nil {
		link.Description = *req.Description
	}
	if req.IsActive != nil {
		link.IsActive = *req.IsActive
	}
	if req.ExpiresAt != nil {
		link.ExpiresAt = req.ExpiresAt
	}
	if req.MaxClicks != nil {
		link.MaxClicks = req.MaxClicks
	}

	utmChanged := false
	if req.UTMSource != nil {
		link.UTMSource = *req.UTMSource
		utmChanged = true
	}
	if req.UTMMedium != nil {
		link.UTMMedium = *req.UTMMedium
		utmChanged = true
	}
	if req.UTMCampaign != nil {
		link.UTMCampaign = *req.UTMCampaign
		utmChanged = true
	}
	if req.UTMTerm != nil {
		link.UTMTerm = *req.UTMTerm
		utmChanged = true
	}
	if req.UTMContent != nil {
		link.UTMContent = *req.UTMContent
		utmChanged = true
	}
	if utmChanged {
		link.FullURL = link.BuildFullURL()
		link.QRCodeURL = link.QRCodeServiceURL(s.baseDomain)
	}

	if err := s.linkRepo.Update(link); err != nil {
		return nil, fmt.Errorf("failed to update link: %w", err)
	}
	return link, nil
}

// DeleteLink deletes a link
func (s *LinkService) DeleteLink(campaignID, linkID string) error {
	if _, err := s.GetLink(campaignID, linkID); err != nil {
		return err
	}
	if err := s.linkRepo.Delete(linkID); err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return nil
}

// RegisterClick runs the public click pipeline for a short code. An
// unavailable link is a normal result with Registered=false; only infra
// failures return an error.
func (s *LinkService) RegisterClick(shortCode, ip, userAgent, referer string) (*models.ClickResult, error) {
	link, err := s.linkRepo.GetByShortCode(shortCode)
	if err != nil {
		return nil, errors.New("link not found")
	}

	if !link.CanBeClicked() {
		return &models.ClickResult{
			Registered: false,
			Reason:     link.UnavailableReason(),
		}, nil
	}

	event := s.buildEvent(link, models.EventTypeClick, ip, userAgent, referer)

	isUnique, err := s.linkRepo.RegisterClick(link, event)
	if errors.Is(err, models.ErrLinkUnavailable) {
		// Lost the race to another click; re-read for the current reason.
		if fresh, ferr := s.linkRepo.GetByShortCode(shortCode); ferr == nil {
			link = fresh
		}
		return &models.ClickResult{
			Registered: false,
			Reason:     link.UnavailableReason(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register click: %w", err)
	}

	// Campaign and channel counters ride outside the click transaction;
	// a miss here self-corrects at the next analytics aggregation.
	if err := s.campaignRepo.IncrementCounters(link.CampaignID, 1, 0, 0); err != nil {
		logrus.Warnf("Failed to increment campaign clicks for %s: %v", link.CampaignID, err)
	}
	if link.ChannelID != nil {
		if err := s.channelRepo.IncrementCounters(*link.ChannelID, 1, 0); err != nil {
			logrus.Warnf("Failed to increment channel clicks for %s: %v", *link.ChannelID, err)
		}
	}

	// Resolve the campaign once for the redirect target and the milestone
	// check; failure falls back to the site root.
	redirect := s.baseDomain + "/"
	campaign, err := s.campaignRepo.GetByID(link.CampaignID)
	if err != nil {
		logrus.Warnf("Failed to resolve campaign %s for redirect: %v", link.CampaignID, err)
	} else {
		redirect = s.baseDomain + "/campaigns/" + campaign.PublicSlug
		s.maybeNotifyMilestone(campaign)
	}

	return &models.ClickResult{
		Registered:  true,
		Unique:      isUnique,
		RedirectURL: redirect,
	}, nil
}

// maybeNotifyMilestone fires when the campaign's click total lands exactly
// on a milestone. Notification failures never affect the click.
func (s *LinkService) maybeNotifyMilestone(campaign *models.Campaign) {
	if s.notifier == nil {
		return
	}
	for _, m := range clickMilestones {
		if campaign.TotalClicks == m {
			if err := s.notifier.NotifyCampaignMilestone(campaign.UserID, campaign.Title, m); err != nil {
				logrus.Warnf("Failed to notify milestone for campaign %s: %v", campaign.ID, err)
			}
			return
		}
	}
}

// RegisterConversion records a conversion postback against a short code.
func (s *LinkService) RegisterConversion(shortCode, ip, userAgent, referer string, req *models.RegisterConversionRequest) (*models.TrackingEvent, error) {
	link, err := s.linkRepo.GetByShortCode(shortCode)
	if err != nil {
		return nil, errors.New("link not found")
	}

	event := s.buildEvent(link, models.EventTypeConversion, ip, userAgent, referer)
	if req != nil {
		event.UserID = req.UserID
		if req.EventData != nil {
			event.EventData = models.JSON(req.EventData)
		}
	}

	if err := s.linkRepo.RegisterConversion(link, event); err != nil {
		return nil, fmt.Errorf("failed to register conversion: %w", err)
	}

	if err := s.campaignRepo.IncrementCounters(link.CampaignID, 0, 1, 0); err != nil {
		logrus.Warnf("Failed to increment campaign conversions for %s: %v", link.CampaignID, err)
	}
	if link.ChannelID != nil {
		if err := s.channelRepo.IncrementCounters(*link.ChannelID, 0, 1); err != nil {
			logrus.Warnf("Failed to increment channel conversions for %s: %v", *link.ChannelID, err)
		}
	}

	return event, nil
}

func (s *LinkService) buildEvent(link *models.Link, eventType, ip, userAgent, referer string) *models.TrackingEvent {
	event := &models.TrackingEvent{
		CampaignID: link.CampaignID,
		ChannelID:  link.ChannelID,
		LinkID:     &link.ID,
		EventType:  eventType,
		IPAddress:  ip,
		UserAgent:  userAgent,
		Referer:    referer,
		ClickHash:  link.ClickHash(ip, userAgent),
	}
	event.Enrich()
	if s.geo != nil {
		event.Country, event.City = s.geo.Resolve(ip)
	}
	return event
}

// generateUniqueShortCode picks short codes until one is free
func (s *LinkService) generateUniqueShortCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := utils.GenerateShortCode()
		exists, err := s.linkRepo.CheckShortCodeExists(code)
		if err != nil {
			return "", fmt.Errorf("failed to check short code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique short code")
}
