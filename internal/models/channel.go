package models

import (
	"time"
)

// Channel types supported by the referral system.
const (
	ChannelTypeTelegram  = "telegram"
	ChannelTypeVK        = "vk"
	ChannelTypeInstagram = "instagram"
	ChannelTypeYouTube   = "youtube"
	ChannelTypeWebsite   = "website"
	ChannelTypeOffline   = "offline"
	ChannelTypeEmail     = "email"
	ChannelTypeWhatsApp  = "whatsapp"
	ChannelTypeFacebook  = "facebook"
	ChannelTypeTwitter   = "twitter"
	ChannelTypeTikTok    = "tiktok"
	ChannelTypeLinkedIn  = "linkedin"
)

// channelRequiredFields maps each channel type to the config keys it needs
// before the channel can actually be used for distribution. A channel with
// missing keys is stored anyway and flagged as invalid in responses.
var channelRequiredFields = map[string][]string{
	ChannelTypeTelegram:  {"chat_link", "hashtags"},
	ChannelTypeVK:        {"group_link", "post_format"},
	ChannelTypeInstagram: {"account_handle", "hashtags", "story_format"},
	ChannelTypeYouTube:   {"channel_link", "video_description"},
	ChannelTypeWebsite:   {"target_url", "utm_source", "utm_medium"},
	ChannelTypeOffline:   {"location", "qr_code_size"},
	ChannelTypeEmail:     {"subject_template", "email_template"},
	ChannelTypeWhatsApp:  {"message_template"},
	ChannelTypeFacebook:  {"page_link", "post_format"},
	ChannelTypeTwitter:   {"tweet_template", "hashtags"},
	ChannelTypeTikTok:    {"account_handle", "video_description"},
	ChannelTypeLinkedIn:  {"company_page", "post_format"},
}

// Presentation metadata per channel type. Unknown types fall back to the
// default glyph and color, never an error.
var channelIcons = map[string]string{
	ChannelTypeTelegram:  "📱",
	ChannelTypeVK:        "🔵",
	ChannelTypeInstagram: "📷",
	ChannelTypeYouTube:   "📺",
	ChannelTypeWebsite:   "🌐",
	ChannelTypeOffline:   "🏪",
	ChannelTypeEmail:     "📧",
	ChannelTypeWhatsApp:  "💬",
	ChannelTypeFacebook:  "📘",
	ChannelTypeTwitter:   "🐦",
	ChannelTypeTikTok:    "🎵",
	ChannelTypeLinkedIn:  "💼",
}

var channelColors = map[string]string{
	ChannelTypeTelegram:  "#0088cc",
	ChannelTypeVK:        "#4c75a3",
	ChannelTypeInstagram: "#e4405f",
	ChannelTypeYouTube:   "#ff0000",
	ChannelTypeWebsite:   "#28a745",
	ChannelTypeOffline:   "#6c757d",
	ChannelTypeEmail:     "#17a2b8",
	ChannelTypeWhatsApp:  "#25d366",
	ChannelTypeFacebook:  "#1877f2",
	ChannelTypeTwitter:   "#1da1f2",
	ChannelTypeTikTok:    "#000000",
	ChannelTypeLinkedIn:  "#0077b5",
}

const (
	defaultChannelIcon  = "📢"
	defaultChannelColor = "#6c757d"
)

// IsValidChannelType reports whether t is a known channel type.
func IsValidChannelType(t string) bool {
	_, ok := channelRequiredFields[t]
	return ok
}

// Channel represents a distribution surface of a campaign
type Channel struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CampaignID string `json:"campaign_id" gorm:"not null;index;type:uuid"`

	ChannelType string `json:"channel_type" gorm:"type:varchar(50);not null;index"`
	ChannelName string `json:"channel_name" gorm:"type:varchar(100);not null"`
	Description string `json:"description" gorm:"type:text"`

	IsActive bool `json:"is_active" gorm:"default:true;index"`
	Priority int  `json:"priority" gorm:"default:0"`

	Config JSON `json:"config" gorm:"type:jsonb"`

	TotalClicks      int `json:"total_clicks" gorm:"default:0"`
	TotalConversions int `json:"total_conversions" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Campaign Campaign `json:"campaign,omitempty" gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE"`
	Steps    []Step   `json:"steps,omitempty" gorm:"foreignKey:ChannelID;references:ID;constraint:OnDelete:CASCADE"`
	Links    []Link   `json:"links,omitempty" gorm:"foreignKey:ChannelID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Channel model
func (Channel) TableName() string {
	return "referral_channels"
}

// RequiredFields returns the config keys required for the channel's type.
func (ch *Channel) RequiredFields() []string {
	if fields, ok := channelRequiredFields[ch.ChannelType]; ok {
		return fields
	}
	return []string{}
}

// ValidateConfig checks the channel config against the required-field table
// for its type. The check is advisory: an incomplete config is reported, not
// rejected.
func (ch *Channel) ValidateConfig() (bool, []string) {
	missing := []string{}
	for _, field := range ch.RequiredFields() {
		v, ok := ch.Config[field]
		if !ok || v == nil || v == "" {
			missing = append(missing, field)
		}
	}
	return len(missing) == 0, missing
}

// Icon returns the display glyph for the channel's type.
func (ch *Channel) Icon() string {
	if icon, ok := channelIcons[ch.ChannelType]; ok {
		return icon
	}
	return defaultChannelIcon
}

// Color returns the display color for the channel's type.
func (ch *Channel) Color() string {
	if color, ok := channelColors[ch.ChannelType]; ok {
		return color
	}
	return defaultChannelColor
}

// ConversionRate returns conversions as a percentage of clicks, zero-guarded.
func (ch *Channel) ConversionRate() float64 {
	return percentage(ch.TotalConversions, ch.TotalClicks)
}

// ActiveSteps returns the channel's active steps.
func (ch *Channel) ActiveSteps() []Step {
	active := make([]Step, 0, len(ch.Steps))
	for _, s := range ch.Steps {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active
}

// CreateChannelRequest represents the request to create a channel
type CreateChannelRequest struct {
	ChannelType string                 `json:"channel_type" binding:"required" example:"telegram"`
	ChannelName string                 `json:"channel_name" binding:"required" example:"Main TG channel"`
	Description string                 `json:"description"`
	Priority    int                    `json:"priority"`
	Config      map[string]interface{} `json:"config"`
}

// UpdateChannelRequest represents the request to update a channel
type UpdateChannelRequest struct {
	ChannelName *string                `json:"channel_name"`
	Description *string                `json:"description"`
	IsActive    *bool                  `json:"is_active"`
	Priority    *int                   `json:"priority"`
	Config      map[string]interface{} `json:"config"`
}

// ChannelResponse represents the owner-facing channel projection
type ChannelResponse struct {
	ID               string                 `json:"id"`
	CampaignID       string                 `json:"campaign_id"`
	ChannelType      string                 `json:"channel_type"`
	ChannelName      string                 `json:"channel_name"`
	Description      string                 `json:"description"`
	IsActive         bool                   `json:"is_active"`
	Priority         int                    `json:"priority"`
	Config           map[string]interface{} `json:"config"`
	Icon             string                 `json:"icon"`
	Color            string                 `json:"color"`
	TotalClicks      int                    `json:"total_clicks"`
	TotalConversions int                    `json:"total_conversions"`
	ConversionRate   float64                `json:"conversion_rate"`
	StepsCount       int                    `json:"steps_count"`
	ActiveStepsCount int                    `json:"active_steps_count"`
	IsValid          bool                   `json:"is_valid"`
	MissingFields    []string               `json:"missing_fields"`
	RequiredFields   []string               `json:"required_fields"`
	Steps            []StepResponse         `json:"steps,omitempty"`
	CreatedAt        string                 `json:"created_at"`
	UpdatedAt        string                 `json:"updated_at"`
}

// PublicChannelResponse is the projection of a channel on the public
// campaign page.
type PublicChannelResponse struct {
	ChannelType string `json:"channel_type"`
	ChannelName string `json:"channel_name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	StepsCount  int    `json:"steps_count"`
}

// ToPublicResponse builds the public projection of the channel.
func (ch *Channel) ToPublicResponse() *PublicChannelResponse {
	return &PublicChannelResponse{
		ChannelType: ch.ChannelType,
		ChannelName: ch.ChannelName,
		Description: ch.Description,
		Icon:        ch.Icon(),
		Color:       ch.Color(),
		StepsCount:  len(ch.ActiveSteps()),
	}
}
