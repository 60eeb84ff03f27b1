package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildFullURL_NoUTM(t *testing.T) {
	link := &Link{ShortCode: "abc12345"}
	assert.Equal(t, "/r/abc12345", link.BuildFullURL())
}

func TestBuildFullURL_OrderedParams(t *testing.T) {
	link := &Link{
		ShortCode:   "abc12345",
		UTMSource:   "telegram",
		UTMMedium:   "social",
		UTMCampaign: "spring",
		UTMTerm:     "promo",
		UTMContent:  "banner",
	}
	assert.Equal(t,
		"/r/abc12345?utm_source=telegram&utm_medium=social&utm_campaign=spring&utm_term=promo&utm_content=banner",
		link.BuildFullURL())
}

func TestBuildFullURL_SkipsEmptyAndEscapes(t *testing.T) {
	link := &Link{
		ShortCode: "abc12345",
		UTMSource: "vk ads",
		UTMTerm:   "летняя акция",
	}
	got := link.BuildFullURL()
	assert.Equal(t, "/r/abc12345?utm_source=vk+ads&utm_term=%D0%BB%D0%B5%D1%82%D0%BD%D1%8F%D1%8F+%D0%B0%D0%BA%D1%86%D0%B8%D1%8F", got)
	assert.NotContains(t, got, "utm_medium")
}

func TestCanBeClicked(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	cap5 := 5

	tests := []struct {
		name   string
		link   Link
		want   bool
		reason string
	}{
		{"active", Link{IsActive: true}, true, ""},
		{"inactive", Link{IsActive: false}, false, "link is inactive"},
		{"expired", Link{IsActive: true, ExpiresAt: &past}, false, "link has expired"},
		{"not yet expired", Link{IsActive: true, ExpiresAt: &future}, true, ""},
		{"cap reached", Link{IsActive: true, MaxClicks: &cap5, TotalClicks: 5}, false, "link click limit reached"},
		{"under cap", Link{IsActive: true, MaxClicks: &cap5, TotalClicks: 4}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.link.CanBeClicked())
			if !tt.want {
				assert.Equal(t, tt.reason, tt.link.UnavailableReason())
			}
		})
	}
}

func TestClickHash_StablePerClient(t *testing.T) {
	link := &Link{ID: "11111111-1111-1111-1111-111111111111"}

	h1 := link.ClickHash("203.0.113.7", "Mozilla/5.0")
	h2 := link.ClickHash("203.0.113.7", "Mozilla/5.0")
	h3 := link.ClickHash("203.0.113.8", "Mozilla/5.0")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 32)
}

func TestLinkRates_ZeroGuarded(t *testing.T) {
	link := &Link{}
	assert.Equal(t, 0.0, link.ConversionRate())
	assert.Equal(t, 0.0, link.UniqueRate())

	link = &Link{TotalClicks: 3, UniqueClicks: 2, TotalConversions: 1}
	assert.Equal(t, 33.33, link.ConversionRate())
	assert.Equal(t, 66.67, link.UniqueRate())
}
