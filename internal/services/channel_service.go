package services

import (
	"errors"
	"fmt"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// ChannelStore is the persistence surface the channel service needs.
type ChannelStore interface {
	Create(channel *models.Channel) error
	GetByID(id string) (*models.Channel, error)
	GetByCampaignID(campaignID string) ([]*models.Channel, error)
	Update(channel *models.Channel) error
	Delete(id string) error
}

type ChannelService struct {
	channelRepo  ChannelStore
	campaignRepo CampaignStore
}

func NewChannelService(channelRepo ChannelStore, campaignRepo CampaignStore) *ChannelService {
	return &ChannelService{
		channelRepo:  channelRepo,
		campaignRepo: campaignRepo,
	}
}

// CreateChannel creates a channel under a campaign the user owns
func (s *ChannelService) CreateChannel(userID, campaignID string, req *models.CreateChannelRequest) (*models.Channel, error) {
	if !models.IsValidChannelType(req.ChannelType) {
		return nil, fmt.Errorf("invalid channel type: %s", req.ChannelType)
	}

	if _, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID); err != nil {
		return nil, errors.New("campaign not found")
	}

	channel := &models.Channel{
		CampaignID:  campaignID,
		ChannelType: req.ChannelType,
		ChannelName: req.ChannelName,
		Description: req.Description,
		IsActive:    true,
		Priority:    req.Priority,
		Config:      models.JSON(req.Config),
	}

	if err := s.channelRepo.Create(channel); err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	return channel, nil
}

// GetChannels lists a campaign's channels, owner-scoped
func (s *ChannelService) GetChannels(userID, campaignID string) ([]*models.Channel, error) {
	if _, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID); err != nil {
		return nil, errors.New("campaign not found")
	}
	channels, err := s.channelRepo.GetByCampaignID(campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channels: %w", err)
	}
	return channels, nil
}

// GetChannel retrieves one channel, owner-scoped through its campaign
func (s *ChannelService) GetChannel(userID, campaignID, channelID string) (*models.Channel, error) {
	if _, err := s.campaignRepo.GetByUserIDAndID(userID, campaignID); err != nil {
		return nil, errors.New("campaign not found")
	}
	channel, err := s.channelRepo.GetByID(channelID)
	if err != nil || channel.CampaignID != campaignID {
		return nil, errors.New("channel not found")
	}
	return channel, nil
}

// UpdateChannel updates a channel. channel_type is immutable.
func (s *ChannelService) UpdateChannel(userID, campaignID, channelID string, req *models.UpdateChannelRequest) (*models.Channel, error) {
	channel, err := s.GetChannel(userID, campaignID, channelID)
	if err != nil {
		return nil, err
	}

	if req.ChannelName != nil {
		channel.ChannelName = *req.ChannelName
	}
	if req.Description != nil {
		channel.Description = *req.Description
	}
	if req.IsActive != nil {
		channel.IsActive = *req.IsActive
	}
	if req.Priority != nil {
		channel.Priority = *req.Priority
	}
	if req.Config != nil {
		channel.Config = models.JSON(req.Config)
	}

	if err := s.channelRepo.Update(channel); err != nil {
		return nil, fmt.Errorf("failed to update channel: %w", err)
	}
	return channel, nil
}

// DeleteChannel deletes a channel and its steps and links
func (s *ChannelService) DeleteChannel(userID, campaignID, channelID string) error {
	if _, err := s.GetChannel(userID, campaignID, channelID); err != nil {
		return err
	}
	if err := s.channelRepo.Delete(channelID); err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}
