package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const (
	campaignCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	shortCodeAlphabet    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateCampaignCode returns an 8-character uppercase alphanumeric code.
func GenerateCampaignCode() string {
	return randomString(campaignCodeAlphabet, 8)
}

// GenerateShortCode returns an 8-character mixed-case alphanumeric code.
func GenerateShortCode() string {
	return randomString(shortCodeAlphabet, 8)
}

func randomString(alphabet string, length int) string {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			b.WriteByte(alphabet[0])
			continue
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String()
}

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s-]`)
	separatorsPattern = regexp.MustCompile(`[\s_-]+`)
)

// Slugify derives a URL slug from a title: lowercase, punctuation stripped,
// whitespace and hyphen runs collapsed to single hyphens, capped at 50
// characters.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonWordPattern.ReplaceAllString(slug, "")
	slug = separatorsPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 50 {
		slug = strings.Trim(slug[:50], "-")
	}
	if slug == "" {
		slug = "campaign"
	}
	return slug
}
