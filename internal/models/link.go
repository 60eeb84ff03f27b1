package models

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrLinkUnavailable is returned by the click write path when the locked
// link row fails the availability recheck inside the transaction.
var ErrLinkUnavailable = errors.New("link unavailable")

// Link represents a trackable short URL scoped to a campaign and optionally
// a channel. The short code and parents are immutable after creation.
type Link struct {
	ID         string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CampaignID string  `json:"campaign_id" gorm:"not null;index;type:uuid"`
	ChannelID  *string `json:"channel_id" gorm:"index;type:uuid"`
	UserID     string  `json:"user_id" gorm:"not null;index;type:uuid"`

	LinkName    string `json:"link_name" gorm:"type:varchar(100);not null"`
	Description string `json:"description" gorm:"type:text"`

	ShortCode string `json:"short_code" gorm:"type:varchar(20);not null;unique;index"`
	FullURL   string `json:"full_url" gorm:"type:varchar(500);not null"`
	QRCodeURL string `json:"qr_code_url" gorm:"type:varchar(500)"`

	// UTM attribution
	UTMSource   string `json:"utm_source" gorm:"type:varchar(100)"`
	UTMMedium   string `json:"utm_medium" gorm:"type:varchar(100)"`
	UTMCampaign string `json:"utm_campaign" gorm:"type:varchar(100)"`
	UTMTerm     string `json:"utm_term" gorm:"type:varchar(100)"`
	UTMContent  string `json:"utm_content" gorm:"type:varchar(100)"`

	IsActive  bool       `json:"is_active" gorm:"default:true;index"`
	ExpiresAt *time.Time `json:"expires_at"`
	MaxClicks *int       `json:"max_clicks"`

	TotalClicks      int `json:"total_clicks" gorm:"default:0"`
	UniqueClicks     int `json:"unique_clicks" gorm:"default:0"`
	TotalConversions int `json:"total_conversions" gorm:"default:0"`

	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	LastClickedAt *time.Time `json:"last_clicked_at"`

	// Relationships
	Campaign Campaign        `json:"campaign,omitempty" gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE"`
	Channel  *Channel        `json:"channel,omitempty" gorm:"foreignKey:ChannelID;references:ID"`
	Events   []TrackingEvent `json:"events,omitempty" gorm:"foreignKey:LinkID;references:ID"`
}

// TableName specifies the table name for the Link model
func (Link) TableName() string {
	return "referral_links"
}

// BuildFullURL derives the short URL with non-empty UTM fields appended in a
// fixed order. Called at creation and again whenever UTM fields change.
func (l *Link) BuildFullURL() string {
	base := "/r/" + l.ShortCode

	params := []struct {
		key   string
		value string
	}{
		{"utm_source", l.UTMSource},
		{"utm_medium", l.UTMMedium},
		{"utm_campaign", l.UTMCampaign},
		{"utm_term", l.UTMTerm},
		{"utm_content", l.UTMContent},
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.value != "" {
			parts = append(parts, p.key+"="+url.QueryEscape(p.value))
		}
	}
	if len(parts) > 0 {
		base += "?" + strings.Join(parts, "&")
	}
	return base
}

// QRCodeServiceURL returns the QR image URL for the link.
func (l *Link) QRCodeServiceURL(baseDomain string) string {
	full := baseDomain + l.FullURL
	return "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=" + url.QueryEscape(full)
}

// IsExpired reports whether the link's expiry has passed.
func (l *Link) IsExpired() bool {
	if l.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*l.ExpiresAt)
}

// IsLimitReached reports whether the click cap has been hit.
func (l *Link) IsLimitReached() bool {
	if l.MaxClicks == nil {
		return false
	}
	return l.TotalClicks >= *l.MaxClicks
}

// CanBeClicked reports whether a click may be registered right now.
func (l *Link) CanBeClicked() bool {
	return l.IsActive && !l.IsExpired() && !l.IsLimitReached()
}

// UnavailableReason describes why the link cannot be clicked. Only
// meaningful when CanBeClicked is false.
func (l *Link) UnavailableReason() string {
	switch {
	case !l.IsActive:
		return "link is inactive"
	case l.IsExpired():
		return "link has expired"
	case l.IsLimitReached():
		return "link click limit reached"
	default:
		return ""
	}
}

// ClickHash derives the dedup hash for a (link, client) pair. md5 here is a
// stable bucketing digest, not a security boundary.
func (l *Link) ClickHash(ipAddress, userAgent string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s:%s", l.ID, ipAddress, userAgent)))
	return hex.EncodeToString(sum[:])
}

// ConversionRate returns conversions as a percentage of clicks, zero-guarded.
func (l *Link) ConversionRate() float64 {
	return percentage(l.TotalConversions, l.TotalClicks)
}

// UniqueRate returns unique clicks as a percentage of all clicks,
// zero-guarded.
func (l *Link) UniqueRate() float64 {
	return percentage(l.UniqueClicks, l.TotalClicks)
}

// CreateLinkRequest represents the request to create a link
type CreateLinkRequest struct {
	ChannelID   *string    `json:"channel_id"`
	LinkName    string     `json:"link_name" binding:"required" example:"Telegram promo link"`
	Description string     `json:"description"`
	UTMSource   string     `json:"utm_source" example:"telegram"`
	UTMMedium   string     `json:"utm_medium" example:"social"`
	UTMCampaign string     `json:"utm_campaign"`
	UTMTerm     string     `json:"utm_term"`
	UTMContent  string     `json:"utm_content"`
	ExpiresAt   *time.Time `json:"expires_at"`
	MaxClicks   *int       `json:"max_clicks"`
}

// UpdateLinkRequest represents the request to update a link. Changing any
// UTM field rebuilds full_url; the short code never changes.
type UpdateLinkRequest struct {
	LinkName    *string    `json:"link_name"`
	Description *string    `json:"description"`
	IsActive    *bool      `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at"`
	MaxClicks   *int       `json:"max_clicks"`
	UTMSource   *string    `json:"utm_source"`
	UTMMedium   *string    `json:"utm_medium"`
	UTMCampaign *string    `json:"utm_campaign"`
	UTMTerm     *string    `json:"utm_term"`
	UTMContent  *string    `json:"utm_content"`
}

// LinkResponse represents the owner-facing link projection
type LinkResponse struct {
	ID               string  `json:"id"`
	CampaignID       string  `json:"campaign_id"`
	ChannelID        *string `json:"channel_id"`
	UserID           string  `json:"user_id"`
	LinkName         string  `json:"link_name"`
	Description      string  `json:"description"`
	ShortCode        string  `json:"short_code"`
	FullURL          string  `json:"full_url"`
	QRCodeURL        string  `json:"qr_code_url"`
	UTMSource        string  `json:"utm_source"`
	UTMMedium        string  `json:"utm_medium"`
	UTMCampaign      string  `json:"utm_campaign"`
	UTMTerm          string  `json:"utm_term"`
	UTMContent       string  `json:"utm_content"`
	IsActive         bool    `json:"is_active"`
	ExpiresAt        *string `json:"expires_at"`
	MaxClicks        *int    `json:"max_clicks"`
	TotalClicks      int     `json:"total_clicks"`
	UniqueClicks     int     `json:"unique_clicks"`
	TotalConversions int     `json:"total_conversions"`
	ConversionRate   float64 `json:"conversion_rate"`
	UniqueRate       float64 `json:"unique_rate"`
	IsExpired        bool    `json:"is_expired"`
	IsLimitReached   bool    `json:"is_limit_reached"`
	CanBeClicked     bool    `json:"can_be_clicked"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
	LastClickedAt    *string `json:"last_clicked_at"`
}

// ClickResult is the outcome of a click registration attempt. An
// unavailable link is a normal result with Registered=false and a reason.
type ClickResult struct {
	Registered  bool   `json:"registered"`
	Unique      bool   `json:"unique"`
	Reason      string `json:"reason,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}
