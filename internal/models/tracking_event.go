package models

import (
	"strings"
	"time"
)

// Event types recorded in the tracking stream.
const (
	EventTypeClick          = "click"
	EventTypeConversion     = "conversion"
	EventTypeStepAttempt    = "step_attempt"
	EventTypeStepCompletion = "step_completion"
	EventTypeRewardGiven    = "reward_given"
)

// IsValidEventType reports whether t is a known event type.
func IsValidEventType(t string) bool {
	switch t {
	case EventTypeClick, EventTypeConversion, EventTypeStepAttempt,
		EventTypeStepCompletion, EventTypeRewardGiven:
		return true
	}
	return false
}

// TrackingEvent is an append-only record of a single interaction with the
// referral system. Events are enriched at write time and never updated.
type TrackingEvent struct {
	ID         string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CampaignID string  `json:"campaign_id" gorm:"not null;index;type:uuid"`
	ChannelID  *string `json:"channel_id" gorm:"index;type:uuid"`
	StepID     *string `json:"step_id" gorm:"index;type:uuid"`
	LinkID     *string `json:"link_id" gorm:"index;type:uuid"`
	UserID     *string `json:"user_id" gorm:"index;type:uuid"`

	EventType string `json:"event_type" gorm:"type:varchar(50);not null;index"`

	IPAddress string `json:"ip_address" gorm:"type:varchar(45)"`
	UserAgent string `json:"user_agent" gorm:"type:text"`
	Referer   string `json:"referer" gorm:"type:varchar(500)"`
	ClickHash string `json:"click_hash" gorm:"type:varchar(32);index"`

	// Derived at enrichment time
	Browser    string `json:"browser" gorm:"type:varchar(50)"`
	OS         string `json:"os" gorm:"type:varchar(50)"`
	DeviceType string `json:"device_type" gorm:"type:varchar(20)"`
	Country    string `json:"country" gorm:"type:varchar(2)"`
	City       string `json:"city" gorm:"type:varchar(100)"`

	IsUnique     bool `json:"is_unique" gorm:"default:false;index"`
	IsConversion bool `json:"is_conversion" gorm:"default:false;index"`
	IsBot        bool `json:"is_bot" gorm:"default:false;index"`

	EventData JSON `json:"event_data" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName specifies the table name for the TrackingEvent model
func (TrackingEvent) TableName() string {
	return "referral_tracking"
}

// Ordered match tables for user agent classification. Order matters:
// chrome advertises safari tokens, edge advertises chrome tokens, so the
// more specific entries come first. First match wins.
var browserMatchers = []struct {
	token string
	name  string
}{
	{"edg", "Edge"},
	{"opr", "Opera"},
	{"opera", "Opera"},
	{"yabrowser", "Yandex Browser"},
	{"firefox", "Firefox"},
	{"chrome", "Chrome"},
	{"safari", "Safari"},
	{"msie", "Internet Explorer"},
	{"trident", "Internet Explorer"},
}

var osMatchers = []struct {
	token string
	name  string
}{
	{"windows", "Windows"},
	{"android", "Android"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"mac os", "macOS"},
	{"macintosh", "macOS"},
	{"linux", "Linux"},
}

var mobileTokens = []string{"mobile", "android", "iphone", "ipad", "ipod"}
var tabletTokens = []string{"ipad", "tablet"}

// botTokens flags automated traffic. The list is a pragmatic allowance for
// the crawlers and CLI clients actually seen in referral traffic.
var botTokens = []string{
	"bot", "crawler", "spider", "scraper", "curl", "wget",
	"googlebot", "bingbot", "yandexbot", "facebookexternalhit",
	"twitterbot", "linkedinbot", "whatsapp", "telegram",
}

// ParseUserAgent classifies a raw user agent string into browser, OS and
// device type. Unknown values come back as "Other", never empty.
func ParseUserAgent(ua string) (browser, os, deviceType string) {
	browser, os, deviceType = "Other", "Other", "desktop"
	lower := strings.ToLower(ua)
	if lower == "" {
		return
	}

	for _, m := range browserMatchers {
		if strings.Contains(lower, m.token) {
			browser = m.name
			break
		}
	}
	for _, m := range osMatchers {
		if strings.Contains(lower, m.token) {
			os = m.name
			break
		}
	}
	for _, t := range tabletTokens {
		if strings.Contains(lower, t) {
			deviceType = "tablet"
			return
		}
	}
	for _, t := range mobileTokens {
		if strings.Contains(lower, t) {
			deviceType = "mobile"
			return
		}
	}
	return
}

// DetectBot reports whether the user agent looks automated.
func DetectBot(ua string) bool {
	lower := strings.ToLower(ua)
	if lower == "" {
		return false
	}
	for _, t := range botTokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Enrich fills the derived fields from the raw request attributes already
// set on the event.
func (e *TrackingEvent) Enrich() {
	e.Browser, e.OS, e.DeviceType = ParseUserAgent(e.UserAgent)
	e.IsBot = DetectBot(e.UserAgent)
	e.IsConversion = e.EventType == EventTypeConversion
}

// TrackingEventResponse represents the owner-facing event projection
type TrackingEventResponse struct {
	ID           string                 `json:"id"`
	CampaignID   string                 `json:"campaign_id"`
	ChannelID    *string                `json:"channel_id"`
	StepID       *string                `json:"step_id"`
	LinkID       *string                `json:"link_id"`
	EventType    string                 `json:"event_type"`
	Browser      string                 `json:"browser"`
	OS           string                 `json:"os"`
	DeviceType   string                 `json:"device_type"`
	Country      string                 `json:"country"`
	City         string                 `json:"city"`
	Referer      string                 `json:"referer"`
	IsUnique     bool                   `json:"is_unique"`
	IsConversion bool                   `json:"is_conversion"`
	IsBot        bool                   `json:"is_bot"`
	EventData    map[string]interface{} `json:"event_data,omitempty"`
	CreatedAt    string                 `json:"created_at"`
}

// ToResponse builds the owner-facing projection. Raw IP and user agent are
// deliberately withheld.
func (e *TrackingEvent) ToResponse() *TrackingEventResponse {
	return &TrackingEventResponse{
		ID:           e.ID,
		CampaignID:   e.CampaignID,
		ChannelID:    e.ChannelID,
		StepID:       e.StepID,
		LinkID:       e.LinkID,
		EventType:    e.EventType,
		Browser:      e.Browser,
		OS:           e.OS,
		DeviceType:   e.DeviceType,
		Country:      e.Country,
		City:         e.City,
		Referer:      e.Referer,
		IsUnique:     e.IsUnique,
		IsConversion: e.IsConversion,
		IsBot:        e.IsBot,
		EventData:    e.EventData,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}

// RegisterConversionRequest carries optional attribution data sent with a
// conversion postback.
type RegisterConversionRequest struct {
	UserID    *string                `json:"user_id"`
	EventData map[string]interface{} `json:"event_data"`
}
