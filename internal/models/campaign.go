package models

import (
	"time"
)

// Campaign types supported by the referral system.
const (
	CampaignTypeInvitation     = "invitation"
	CampaignTypePromotion      = "promotion"
	CampaignTypeContest        = "contest"
	CampaignTypeEvent          = "event"
	CampaignTypeLeadGeneration = "lead_generation"
)

// ValidCampaignTypes lists every accepted campaign type.
var ValidCampaignTypes = []string{
	CampaignTypeInvitation,
	CampaignTypePromotion,
	CampaignTypeContest,
	CampaignTypeEvent,
	CampaignTypeLeadGeneration,
}

// IsValidCampaignType reports whether t is a known campaign type.
func IsValidCampaignType(t string) bool {
	for _, v := range ValidCampaignTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Campaign represents a referral campaign owned by a user
type Campaign struct {
	ID     string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID string `json:"user_id" gorm:"not null;index;type:uuid"`

	Title        string `json:"title" gorm:"type:varchar(200);not null"`
	Description  string `json:"description" gorm:"type:text"`
	CampaignType string `json:"campaign_type" gorm:"type:varchar(50);not null;index"`

	IsActive  bool       `json:"is_active" gorm:"default:true;index"`
	StartDate *time.Time `json:"start_date" gorm:"index"`
	EndDate   *time.Time `json:"end_date" gorm:"index"`

	// Generated at creation time, immutable afterwards
	CampaignCode string `json:"campaign_code" gorm:"type:varchar(20);not null;unique;index"`
	PublicSlug   string `json:"public_slug" gorm:"type:varchar(100);unique;index"`

	// Reward policy
	RewardType        string `json:"reward_type" gorm:"type:varchar(50)"` // points, discount, gift, access
	RewardValue       string `json:"reward_value" gorm:"type:varchar(100)"`
	RewardDescription string `json:"reward_description" gorm:"type:text"`

	// Aggregate counters, incremented atomically per row
	TotalClicks       int `json:"total_clicks" gorm:"default:0"`
	TotalConversions  int `json:"total_conversions" gorm:"default:0"`
	TotalRewardsGiven int `json:"total_rewards_given" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User     User            `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Channels []Channel       `json:"channels,omitempty" gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE"`
	Links    []Link          `json:"links,omitempty" gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE"`
	Events   []TrackingEvent `json:"events,omitempty" gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Campaign model
func (Campaign) TableName() string {
	return "referral_campaigns"
}

// ConversionRate returns conversions as a percentage of clicks, 0 when there
// are no clicks yet.
func (c *Campaign) ConversionRate() float64 {
	return percentage(c.TotalConversions, c.TotalClicks)
}

// ActiveChannels returns the campaign's active channels.
func (c *Campaign) ActiveChannels() []Channel {
	active := make([]Channel, 0, len(c.Channels))
	for _, ch := range c.Channels {
		if ch.IsActive {
			active = append(active, ch)
		}
	}
	return active
}

// TotalSteps returns the step count across all loaded channels.
func (c *Campaign) TotalSteps() int {
	total := 0
	for _, ch := range c.Channels {
		total += len(ch.Steps)
	}
	return total
}

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	Title             string     `json:"title" binding:"required" example:"Spring Promo"`
	Description       string     `json:"description" example:"Invite friends, earn rewards"`
	CampaignType      string     `json:"campaign_type" binding:"required" example:"promotion"`
	StartDate         *time.Time `json:"start_date" example:"2026-09-01T00:00:00Z"`
	EndDate           *time.Time `json:"end_date" example:"2026-12-31T23:59:59Z"`
	RewardType        string     `json:"reward_type" example:"points"`
	RewardValue       string     `json:"reward_value" example:"100"`
	RewardDescription string     `json:"reward_description" example:"100 bonus points per referral"`
}

// UpdateCampaignRequest represents the request to update a campaign.
// Pointer fields distinguish omitted fields from zero values.
type UpdateCampaignRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	IsActive          *bool      `json:"is_active"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	RewardType        *string    `json:"reward_type"`
	RewardValue       *string    `json:"reward_value"`
	RewardDescription *string    `json:"reward_description"`
}

// CampaignResponse represents the owner-facing campaign projection
type CampaignResponse struct {
	ID                  string            `json:"id"`
	UserID              string            `json:"user_id"`
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	CampaignType        string            `json:"campaign_type"`
	IsActive            bool              `json:"is_active"`
	StartDate           *string           `json:"start_date"`
	EndDate             *string           `json:"end_date"`
	CampaignCode        string            `json:"campaign_code"`
	PublicSlug          string            `json:"public_slug"`
	RewardType          string            `json:"reward_type"`
	RewardValue         string            `json:"reward_value"`
	RewardDescription   string            `json:"reward_description"`
	TotalClicks         int               `json:"total_clicks"`
	TotalConversions    int               `json:"total_conversions"`
	TotalRewardsGiven   int               `json:"total_rewards_given"`
	ConversionRate      float64           `json:"conversion_rate"`
	ChannelsCount       int               `json:"channels_count"`
	ActiveChannelsCount int               `json:"active_channels_count"`
	TotalSteps          int               `json:"total_steps"`
	Channels            []ChannelResponse `json:"channels,omitempty"`
	CreatedAt           string            `json:"created_at"`
	UpdatedAt           string            `json:"updated_at"`
}

// PublicCampaignResponse is the projection exposed on the public campaign
// page. It never carries the owner, the campaign code or raw counters.
type PublicCampaignResponse struct {
	Title             string                  `json:"title"`
	Description       string                  `json:"description"`
	CampaignType      string                  `json:"campaign_type"`
	PublicSlug        string                  `json:"public_slug"`
	RewardType        string                  `json:"reward_type"`
	RewardDescription string                  `json:"reward_description"`
	IsActive          bool                    `json:"is_active"`
	StartDate         *string                 `json:"start_date"`
	EndDate           *string                 `json:"end_date"`
	ChannelsCount     int                     `json:"channels_count"`
	Channels          []PublicChannelResponse `json:"channels,omitempty"`
}

// ToPublicResponse builds the public projection of the campaign.
func (c *Campaign) ToPublicResponse() *PublicCampaignResponse {
	active := c.ActiveChannels()
	channels := make([]PublicChannelResponse, len(active))
	for i, ch := range active {
		channels[i] = *ch.ToPublicResponse()
	}
	return &PublicCampaignResponse{
		Title:             c.Title,
		Description:       c.Description,
		CampaignType:      c.CampaignType,
		PublicSlug:        c.PublicSlug,
		RewardType:        c.RewardType,
		RewardDescription: c.RewardDescription,
		IsActive:          c.IsActive,
		StartDate:         formatTimePtr(c.StartDate),
		EndDate:           formatTimePtr(c.EndDate),
		ChannelsCount:     len(active),
		Channels:          channels,
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
