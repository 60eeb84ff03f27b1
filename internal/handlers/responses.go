package handlers

import (
	"time"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// Projections from persisted models to API responses. Derived fields
// (rates, icons, validity) are computed here so every handler returns the
// same shape.

func toCampaignResponse(c *models.Campaign, includeChannels bool) *models.CampaignResponse {
	resp := &models.CampaignResponse{
		ID:                  c.ID,
		UserID:              c.UserID,
		Title:               c.Title,
		Description:         c.Description,
		CampaignType:        c.CampaignType,
		IsActive:            c.IsActive,
		StartDate:           formatTimePtr(c.StartDate),
		EndDate:             formatTimePtr(c.EndDate),
		CampaignCode:        c.CampaignCode,
		PublicSlug:          c.PublicSlug,
		RewardType:          c.RewardType,
		RewardValue:         c.RewardValue,
		RewardDescription:   c.RewardDescription,
		TotalClicks:         c.TotalClicks,
		TotalConversions:    c.TotalConversions,
		TotalRewardsGiven:   c.TotalRewardsGiven,
		ConversionRate:      c.ConversionRate(),
		ChannelsCount:       len(c.Channels),
		ActiveChannelsCount: len(c.ActiveChannels()),
		TotalSteps:          c.TotalSteps(),
		CreatedAt:           c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           c.UpdatedAt.Format(time.RFC3339),
	}
	if includeChannels {
		resp.Channels = make([]models.ChannelResponse, len(c.Channels))
		for i := range c.Channels {
			resp.Channels[i] = *toChannelResponse(&c.Channels[i], true)
		}
	}
	return resp
}

func toChannelResponse(ch *models.Channel, includeSteps bool) *models.ChannelResponse {
	isValid, missing := ch.ValidateConfig()
	resp := &models.ChannelResponse{
		ID:               ch.ID,
		CampaignID:       ch.CampaignID,
		ChannelType:      ch.ChannelType,
		ChannelName:      ch.ChannelName,
		Description:      ch.Description,
		IsActive:         ch.IsActive,
		Priority:         ch.Priority,
		Config:           ch.Config,
		Icon:             ch.Icon(),
		Color:            ch.Color(),
		TotalClicks:      ch.TotalClicks,
		TotalConversions: ch.TotalConversions,
		ConversionRate:   ch.ConversionRate(),
		StepsCount:       len(ch.Steps),
		ActiveStepsCount: len(ch.ActiveSteps()),
		IsValid:          isValid,
		MissingFields:    missing,
		RequiredFields:   ch.RequiredFields(),
		CreatedAt:        ch.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        ch.UpdatedAt.Format(time.RFC3339),
	}
	if includeSteps {
		resp.Steps = make([]models.StepResponse, len(ch.Steps))
		for i := range ch.Steps {
			resp.Steps[i] = *toStepResponse(&ch.Steps[i])
		}
	}
	return resp
}

func toStepResponse(s *models.Step) *models.StepResponse {
	return &models.StepResponse{
		ID:                s.ID,
		ChannelID:         s.ChannelID,
		StepType:          s.StepType,
		StepName:          s.StepName,
		Description:       s.Description,
		StepOrder:         s.StepOrder,
		IsRequired:        s.IsRequired,
		IsActive:          s.IsActive,
		RewardPoints:      s.RewardPoints,
		RewardDescription: s.RewardDescription,
		Icon:              s.Icon(),
		TotalAttempts:     s.TotalAttempts,
		TotalCompletions:  s.TotalCompletions,
		CompletionRate:    s.CompletionRate(),
		ValidationConfig:  s.ValidationConfig,
		ValidationRules:   s.EffectiveRules(),
		CreatedAt:         s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         s.UpdatedAt.Format(time.RFC3339),
	}
}

func toLinkResponse(l *models.Link) *models.LinkResponse {
	return &models.LinkResponse{
		ID:               l.ID,
		CampaignID:       l.CampaignID,
		ChannelID:        l.ChannelID,
		UserID:           l.UserID,
		LinkName:         l.LinkName,
		Description:      l.Description,
		ShortCode:        l.ShortCode,
		FullURL:          l.FullURL,
		QRCodeURL:        l.QRCodeURL,
		UTMSource:        l.UTMSource,
		UTMMedium:        l.UTMMedium,
		UTMCampaign:      l.UTMCampaign,
		UTMTerm:          l.UTMTerm,
		UTMContent:       l.UTMContent,
		IsActive:         l.IsActive,
		ExpiresAt:        formatTimePtr(l.ExpiresAt),
		MaxClicks:        l.MaxClicks,
		TotalClicks:      l.TotalClicks,
		UniqueClicks:     l.UniqueClicks,
		TotalConversions: l.TotalConversions,
		ConversionRate:   l.ConversionRate(),
		UniqueRate:       l.UniqueRate(),
		IsExpired:        l.IsExpired(),
		IsLimitReached:   l.IsLimitReached(),
		CanBeClicked:     l.CanBeClicked(),
		CreatedAt:        l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        l.UpdatedAt.Format(time.RFC3339),
		LastClickedAt:    formatTimePtr(l.LastClickedAt),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
