package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	chromeWindowsUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	edgeWindowsUA   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0"
	safariIphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	safariIpadUA    = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	firefoxLinuxUA  = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	operaMacUA      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 OPR/106.0.0.0"
	chromeAndroidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		browser string
		os      string
		device  string
	}{
		{"chrome on windows", chromeWindowsUA, "Chrome", "Windows", "desktop"},
		{"edge wins over chrome tokens", edgeWindowsUA, "Edge", "Windows", "desktop"},
		{"safari on iphone", safariIphoneUA, "Safari", "iOS", "mobile"},
		{"ipad classified as tablet", safariIpadUA, "Safari", "iOS", "tablet"},
		{"firefox on linux", firefoxLinuxUA, "Firefox", "Linux", "desktop"},
		{"opera wins over chrome tokens", operaMacUA, "Opera", "macOS", "desktop"},
		{"chrome on android", chromeAndroidUA, "Chrome", "Android", "mobile"},
		{"empty", "", "Other", "Other", "desktop"},
		{"garbage", "x", "Other", "Other", "desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser, os, device := ParseUserAgent(tt.ua)
			assert.Equal(t, tt.browser, browser)
			assert.Equal(t, tt.os, os)
			assert.Equal(t, tt.device, device)
		})
	}
}

func TestDetectBot(t *testing.T) {
	assert.True(t, DetectBot("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"))
	assert.True(t, DetectBot("curl/8.4.0"))
	assert.True(t, DetectBot("TelegramBot (like TwitterBot)"))
	assert.False(t, DetectBot(chromeWindowsUA))
	assert.False(t, DetectBot(""))
}

func TestEnrich(t *testing.T) {
	event := &TrackingEvent{
		EventType: EventTypeConversion,
		UserAgent: chromeAndroidUA,
	}
	event.Enrich()

	assert.Equal(t, "Chrome", event.Browser)
	assert.Equal(t, "Android", event.OS)
	assert.Equal(t, "mobile", event.DeviceType)
	assert.False(t, event.IsBot)
	assert.True(t, event.IsConversion)
}

func TestToResponse_WithholdsRawClientData(t *testing.T) {
	event := &TrackingEvent{
		EventType: EventTypeClick,
		IPAddress: "203.0.113.7",
		UserAgent: chromeWindowsUA,
		Browser:   "Chrome",
	}
	resp := event.ToResponse()

	assert.Equal(t, "Chrome", resp.Browser)
	assert.Equal(t, EventTypeClick, resp.EventType)
}

func TestIsValidEventType(t *testing.T) {
	for _, valid := range []string{"click", "conversion", "step_attempt", "step_completion", "reward_given"} {
		assert.True(t, IsValidEventType(valid), valid)
	}
	assert.False(t, IsValidEventType("pageview"))
	assert.False(t, IsValidEventType(""))
}
