package services

import (
	"errors"
	"fmt"
	"time"
)

// MessagePublisher publishes to a named queue. Satisfied by RabbitMQService.
type MessagePublisher interface {
	PublishMessage(queueName string, message map[string]interface{}) error
}

// Notifier is the full notification surface the public click and step
// pipelines wire through. Satisfied by NotificationService.
type Notifier interface {
	RewardNotifier
	MilestoneNotifier
}

// NotificationService builds notification events and hands them to the
// message broker. Delivery to end users is an external consumer's concern.
type NotificationService struct {
	publisher MessagePublisher
}

func NewNotificationService(publisher MessagePublisher) *NotificationService {
	return &NotificationService{publisher: publisher}
}

// NotifyRewardGranted publishes a reward event for the campaign owner
func (s *NotificationService) NotifyRewardGranted(userID, campaignTitle, stepName string, points int) error {
	return s.publish(userID, "reward_granted",
		"Reward granted",
		fmt.Sprintf("A participant completed '%s' in campaign '%s'", stepName, campaignTitle),
		map[string]interface{}{
			"campaign_title": campaignTitle,
			"step_name":      stepName,
			"reward_points":  points,
		})
}

// NotifyCampaignMilestone publishes a milestone event (e.g. click counts)
func (s *NotificationService) NotifyCampaignMilestone(userID, campaignTitle string, milestone int) error {
	return s.publish(userID, "campaign_milestone",
		"Campaign milestone reached",
		fmt.Sprintf("Campaign '%s' passed %d clicks", campaignTitle, milestone),
		map[string]interface{}{
			"campaign_title": campaignTitle,
			"milestone":      milestone,
		})
}

func (s *NotificationService) publish(userID, notifType, title, message string, data map[string]interface{}) error {
	if s.publisher == nil {
		return errors.New("message broker not configured")
	}
	return s.publisher.PublishMessage(NotificationQueue, map[string]interface{}{
		"user_id":    userID,
		"type":       notifType,
		"title":      title,
		"message":    message,
		"data":       data,
		"created_at": time.Now().Format(time.RFC3339),
	})
}
