package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelValidateConfig(t *testing.T) {
	ch := &Channel{ChannelType: ChannelTypeTelegram}

	valid, missing := ch.ValidateConfig()
	assert.False(t, valid)
	assert.ElementsMatch(t, []string{"chat_link", "hashtags"}, missing)

	ch.Config = JSON{"chat_link": "https://t.me/promo", "hashtags": "#ref"}
	valid, missing = ch.ValidateConfig()
	assert.True(t, valid)
	assert.Empty(t, missing)
}

func TestChannelValidateConfig_EmptyValueIsMissing(t *testing.T) {
	ch := &Channel{
		ChannelType: ChannelTypeWhatsApp,
		Config:      JSON{"message_template": ""},
	}
	valid, missing := ch.ValidateConfig()
	assert.False(t, valid)
	assert.Equal(t, []string{"message_template"}, missing)
}

func TestChannelPresentationFallbacks(t *testing.T) {
	known := &Channel{ChannelType: ChannelTypeVK}
	assert.Equal(t, "🔵", known.Icon())
	assert.Equal(t, "#4c75a3", known.Color())

	unknown := &Channel{ChannelType: "carrier-pigeon"}
	assert.Equal(t, defaultChannelIcon, unknown.Icon())
	assert.Equal(t, defaultChannelColor, unknown.Color())
	assert.Empty(t, unknown.RequiredFields())
}

func TestIsValidChannelType(t *testing.T) {
	assert.True(t, IsValidChannelType(ChannelTypeEmail))
	assert.False(t, IsValidChannelType("smoke-signal"))
}
