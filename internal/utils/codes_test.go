package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCampaignCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := GenerateCampaignCode()
		assert.Len(t, code, 8)
		for _, c := range code {
			assert.Contains(t, campaignCodeAlphabet, string(c))
		}
		seen[code] = true
	}
	// 50 collisions in a 36^8 space would mean the generator is broken
	assert.Greater(t, len(seen), 1)
}

func TestGenerateShortCode(t *testing.T) {
	code := GenerateShortCode()
	assert.Len(t, code, 8)
	for _, c := range code {
		assert.Contains(t, shortCodeAlphabet, string(c))
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Summer Promo", "summer-promo"},
		{"punctuation stripped", "Hello, World!", "hello-world"},
		{"separator runs collapsed", "a _ b -- c", "a-b-c"},
		{"trimmed", "  --Promo--  ", "promo"},
		{"empty falls back", "!!!", "campaign"},
		{"long titles capped", strings.Repeat("promo ", 20), "promo-promo-promo-promo-promo-promo-promo-promo-pr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.title)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 50)
		})
	}
}
