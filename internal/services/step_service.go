package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// StepStore is the persistence surface the step service needs.
type StepStore interface {
	Create(step *models.Step) error
	GetByID(id string) (*models.Step, error)
	GetByChannelID(channelID string) ([]*models.Step, error)
	Update(step *models.Step) error
	Delete(id string) error
	IncrementCounters(stepID string, attempts, completions int) error
}

// EventAppender appends tracking events.
type EventAppender interface {
	Create(event *models.TrackingEvent) error
}

// CampaignCounterStore bumps denormalized campaign counters and resolves
// campaigns outside of owner scope.
type CampaignCounterStore interface {
	GetByID(id string) (*models.Campaign, error)
	IncrementCounters(campaignID string, clicks, conversions, rewards int) error
}

// RewardNotifier publishes reward notifications for an external consumer.
type RewardNotifier interface {
	NotifyRewardGranted(userID, campaignTitle, stepName string, points int) error
}

type StepService struct {
	stepRepo     StepStore
	channelRepo  ChannelStore
	campaignRepo CampaignCounterStore
	trackingRepo EventAppender
	notifier     RewardNotifier
}

func NewStepService(stepRepo StepStore, channelRepo ChannelStore, campaignRepo CampaignCounterStore, trackingRepo EventAppender, notifier RewardNotifier) *StepService {
	return &StepService{
		stepRepo:     stepRepo,
		channelRepo:  channelRepo,
		campaignRepo: campaignRepo,
		trackingRepo: trackingRepo,
		notifier:     notifier,
	}
}

// CreateStep creates a step under a channel
func (s *StepService) CreateStep(channelID string, req *models.CreateStepRequest) (*models.Step, error) {
	if !models.IsValidStepType(req.StepType) {
		return nil, fmt.Errorf("invalid step type: %s", req.StepType)
	}

	if _, err := s.channelRepo.GetByID(channelID); err != nil {
		return nil, errors.New("channel not found")
	}

	order := req.StepOrder
	if order < 1 {
		order = 1
	}

	isRequired := true
	if req.IsRequired != nil {
		isRequired = *req.IsRequired
	}

	step := &models.Step{
		ChannelID:         channelID,
		StepType:          req.StepType,
		StepName:          req.StepName,
		Description:       req.Description,
		StepOrder:         order,
		IsRequired:        isRequired,
		IsActive:          true,
		ValidationConfig:  models.JSON(req.ValidationConfig),
		RewardPoints:      req.RewardPoints,
		RewardDescription: req.RewardDescription,
	}

	if err := s.stepRepo.Create(step); err != nil {
		return nil, fmt.Errorf("failed to create step: %w", err)
	}
	return step, nil
}

// GetSteps lists a channel's steps in funnel order
func (s *StepService) GetSteps(channelID string) ([]*models.Step, error) {
	if _, err := s.channelRepo.GetByID(channelID); err != nil {
		return nil, errors.New("channel not found")
	}
	steps, err := s.stepRepo.GetByChannelID(channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}
	return steps, nil
}

// getScopedStep resolves a step and rejects it when it hangs off a
// different channel than the caller was authorized for.
func (s *StepService) getScopedStep(channelID, stepID string) (*models.Step, error) {
	step, err := s.stepRepo.GetByID(stepID)
	if err != nil || step.ChannelID != channelID {
		return nil, errors.New("step not found")
	}
	return step, nil
}

// UpdateStep updates a step scoped to its channel. step_type is immutable.
func (s *StepService) UpdateStep(channelID, stepID string, req *models.UpdateStepRequest) (*models.Step, error) {
	step, err := s.getScopedStep(channelID, stepID)
	if err != nil {
		return nil, err
	}

	if req.StepName != nil {
		step.StepName = *req.StepName
	}
	if req.Description != nil {
		step.Description = *req.Description
	}
	if req.StepOrder != nil {
		step.StepOrder = *req.StepOrder
	}
	if req.IsRequired != nil {
		step.IsRequired = *req.IsRequired
	}
	if req.IsActive != nil {
		step.IsActive = *req.IsActive
	}
	if req.RewardPoints != nil {
		step.RewardPoints = *req.RewardPoints
	}
	if req.RewardDescription != nil {
		step.RewardDescription = *req.RewardDescription
	}
	if req.ValidationConfig != nil {
		step.ValidationConfig = models.JSON(req.ValidationConfig)
	}

	if err := s.stepRepo.Update(step); err != nil {
		return nil, fmt.Errorf("failed to update step: %w", err)
	}
	return step, nil
}

// DeleteStep deletes a step scoped to its channel
func (s *StepService) DeleteStep(channelID, stepID string) error {
	if _, err := s.getScopedStep(channelID, stepID); err != nil {
		return err
	}
	if err := s.stepRepo.Delete(stepID); err != nil {
		return fmt.Errorf("failed to delete step: %w", err)
	}
	return nil
}

// CompleteStep runs a public completion attempt: every attempt bumps the
// attempt counter and appends a step_attempt event; a valid submission also
// bumps completions, grants the reward and emits the reward events. Failed
// validation is a normal result, not an error.
func (s *StepService) CompleteStep(stepID string, req *models.CompleteStepRequest, ip, userAgent string) (*models.StepCompletionResult, error) {
	step, err := s.stepRepo.GetByID(stepID)
	if err != nil {
		return nil, errors.New("step not found")
	}
	if !step.IsActive {
		return nil, errors.New("step not found")
	}

	channel, err := s.channelRepo.GetByID(step.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve channel: %w", err)
	}

	ok, verrs := step.Validate(req.Data)

	completions := 0
	if ok {
		completions = 1
	}
	if err := s.stepRepo.IncrementCounters(step.ID, 1, completions); err != nil {
		return nil, fmt.Errorf("failed to update step counters: %w", err)
	}

	s.appendStepEvent(step, channel.CampaignID, models.EventTypeStepAttempt, req.UserID, ip, userAgent, ok)

	result := &models.StepCompletionResult{Completed: ok, Errors: verrs}
	if !ok {
		return result, nil
	}

	s.appendStepEvent(step, channel.CampaignID, models.EventTypeStepCompletion, req.UserID, ip, userAgent, true)

	if step.RewardPoints > 0 {
		result.RewardPoints = step.RewardPoints
		result.RewardGranted = s.grantReward(step, channel.CampaignID, req.UserID, ip, userAgent)
	}

	return result, nil
}

// grantReward bumps the campaign reward counter, appends the reward event
// and publishes the notification. Failures here are logged and reported in
// the result, never surfaced as request errors.
func (s *StepService) grantReward(step *models.Step, campaignID string, userID, ip, userAgent string) bool {
	if err := s.campaignRepo.IncrementCounters(campaignID, 0, 0, step.RewardPoints); err != nil {
		logrus.Errorf("Failed to increment campaign rewards for %s: %v", campaignID, err)
		return false
	}

	s.appendStepEvent(step, campaignID, models.EventTypeRewardGiven, userID, ip, userAgent, true)

	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		logrus.Warnf("Failed to load campaign %s for reward notification: %v", campaignID, err)
		return true
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyRewardGranted(campaign.UserID, campaign.Title, step.StepName, step.RewardPoints); err != nil {
			logrus.Warnf("Failed to publish reward notification: %v", err)
		}
	}
	return true
}

func (s *StepService) appendStepEvent(step *models.Step, campaignID, eventType string, userID, ip, userAgent string, success bool) {
	event := &models.TrackingEvent{
		CampaignID: campaignID,
		ChannelID:  &step.ChannelID,
		StepID:     &step.ID,
		EventType:  eventType,
		IPAddress:  ip,
		UserAgent:  userAgent,
		EventData: models.JSON{
			"step_type": step.StepType,
			"success":   success,
		},
	}
	if userID != "" {
		event.UserID = &userID
	}
	event.Enrich()

	if err := s.trackingRepo.Create(event); err != nil {
		logrus.Errorf("Failed to append %s event for step %s: %v", eventType, step.ID, err)
	}
}
