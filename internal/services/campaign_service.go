package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dinorefs/dinorefs-backend/internal/models"
	"github.com/dinorefs/dinorefs-backend/internal/utils"
)

// CampaignStore is the persistence surface the campaign service needs.
// Satisfied by repository.CampaignRepository.
type CampaignStore interface {
	Create(campaign *models.Campaign) error
	GetByUserIDAndID(userID, campaignID string) (*models.Campaign, error)
	GetByPublicSlug(slug string) (*models.Campaign, error)
	GetByUserID(userID string, page, pageSize int) ([]*models.Campaign, int64, error)
	Update(campaign *models.Campaign) error
	DeleteByUserIDAndID(userID, campaignID string) error
	CheckCodeExists(code string) (bool, error)
	CheckSlugExists(slug string) (bool, error)
}

// maxCodeAttempts bounds the retry-until-unique loops. With 36^8 codes a
// collision streak this long means something is broken, not unlucky.
const maxCodeAttempts = 10

type CampaignService struct {
	campaignRepo CampaignStore
	cache        *CacheService
}

func NewCampaignService(campaignRepo CampaignStore, cache *CacheService) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		cache:        cache,
	}
}

// CreateCampaign creates a new campaign for a user
func (s *CampaignService) CreateCampaign(userID string, req *models.CreateCampaignRequest) (*models.Campaign, error) {
	if !models.IsValidCampaignType(req.CampaignType) {
		return nil, fmt.Errorf("invalid campaign type: %s", req.CampaignType)
	}

	code, err := s.generateUniqueCode()
	if err != nil {
		return nil, err
	}

	slug, err := s.generateUniqueSlug(req.Title)
	if err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		UserID:            userID,
		Title:             req.Title,
		Description:       req.Description,
		CampaignType:      req.CampaignType,
		IsActive:          true,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		CampaignCode:      code,
		PublicSlug:        slug,
		RewardType:        req.RewardType,
		RewardValue:       req.RewardValue,
		RewardDescription: req.RewardDescription,
	}

	if err := s.campaignRepo.Create(campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	return campaign, nil
}

// GetCampaign retrieves a campaign scoped to its owner
func (s *CampaignService) GetCampaign(userID, campaignID string) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID)
	if err != nil {
		return nil, errors.New("campaign not found")
	}
	return campaign, nil
}

// GetCampaigns retrieves the owner's campaigns with pagination
func (s *CampaignService) GetCampaigns(userID string, page, pageSize int) ([]*models.Campaign, int64, error) {
	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)
	campaigns, total, err := s.campaignRepo.GetByUserID(userID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get campaigns: %w", err)
	}
	return campaigns, total, nil
}

// GetPublicCampaign retrieves the public projection by slug, preferring the
// cache when one is configured.
func (s *CampaignService) GetPublicCampaign(slug string) (*models.PublicCampaignResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetPublicCampaign(slug); ok {
			return cached, nil
		}
	}

	campaign, err := s.campaignRepo.GetByPublicSlug(slug)
	if err != nil {
		return nil, errors.New("campaign not found")
	}
	if !campaign.IsActive {
		return nil, errors.New("campaign not found")
	}

	resp := campaign.ToPublicResponse()
	if s.cache != nil {
		s.cache.SetPublicCampaign(slug, resp)
	}
	return resp, nil
}

// UpdateCampaign updates a campaign scoped to its owner. campaign_code and
// public_slug never change after creation.
func (s *CampaignService) UpdateCampaign(userID, campaignID string, req *models.UpdateCampaignRequest) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID)
	if err != nil {
		return nil, errors.New("campaign not found")
	}

	if req.Title != nil {
		campaign.Title = *req.Title
	}
	if req.Description != nil {
		campaign.Description = *req.Description
	}
	if req.IsActive != nil {
		campaign.IsActive = *req.IsActive
	}
	if req.StartDate != nil {
		campaign.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		campaign.EndDate = req.EndDate
	}
	if req.RewardType != nil {
		campaign.RewardType = *req.RewardType
	}
	if req.RewardValue != nil {
		campaign.RewardValue = *req.RewardValue
	}
	if req.RewardDescription != nil {
		campaign.RewardDescription = *req.RewardDescription
	}

	if err := s.campaignRepo.Update(campaign); err != nil {
		return nil, fmt.Errorf("failed to update campaign: %w", err)
	}

	if s.cache != nil {
		s.cache.InvalidatePublicCampaign(campaign.PublicSlug)
	}

	return campaign, nil
}

// DeleteCampaign deletes a campaign and all of its children
func (s *CampaignService) DeleteCampaign(userID, campaignID string) error {
	campaign, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID)
	if err != nil {
		return errors.New("campaign not found")
	}

	if err := s.campaignRepo.DeleteByUserIDAndID(userID, campaignID); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	if s.cache != nil {
		s.cache.InvalidatePublicCampaign(campaign.PublicSlug)
	}

	logrus.WithFields(logrus.Fields{
		"campaign_id": campaignID,
		"user_id":     userID,
	}).Info("Campaign deleted")

	return nil
}

// generateUniqueCode picks campaign codes until one is free
func (s *CampaignService) generateUniqueCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := utils.GenerateCampaignCode()
		exists, err := s.campaignRepo.CheckCodeExists(code)
		if err != nil {
			return "", fmt.Errorf("failed to check campaign code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique campaign code")
}

// generateUniqueSlug derives the slug from the title, suffixing -1, -2, ...
// while taken.
func (s *CampaignService) generateUniqueSlug(title string) (string, error) {
	base := utils.Slugify(title)
	slug := base
	for i := 1; ; i++ {
		exists, err := s.campaignRepo.CheckSlugExists(slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > 50 {
			trimmed = strings.Trim(trimmed[:50-len(suffix)], "-")
		}
		slug = trimmed + suffix
		if i > 1000 {
			return "", errors.New("could not generate a unique slug")
		}
	}
}

// IsRunning reports whether the campaign is inside its schedule window
func IsRunning(c *models.Campaign, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && now.After(*c.EndDate) {
		return false
	}
	return true
}
