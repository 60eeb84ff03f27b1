package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// fakeLinkStore is an in-memory LinkStore. RegisterClick mirrors the real
// repository's dedup semantics against the recorded events.
type fakeLinkStore struct {
	links  map[string]*models.Link
	events []*models.TrackingEvent
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{links: map[string]*models.Link{}}
}

func (f *fakeLinkStore) Create(link *models.Link) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	f.links[link.ID] = link
	return nil
}

func (f *fakeLinkStore) GetByID(id string) (*models.Link, error) {
	link, ok := f.links[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return link, nil
}

func (f *fakeLinkStore) GetByShortCode(code string) (*models.Link, error) {
	for _, link := range f.links {
		if link.ShortCode == code {
			return link, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeLinkStore) GetByCampaignID(campaignID string) ([]*models.Link, error) {
	var out []*models.Link
	for _, link := range f.links {
		if link.CampaignID == campaignID {
			out = append(out, link)
		}
	}
	return out, nil
}

func (f *fakeLinkStore) Update(link *models.Link) error {
	f.links[link.ID] = link
	return nil
}

func (f *fakeLinkStore) Delete(id string) error {
	delete(f.links, id)
	return nil
}

func (f *fakeLinkStore) CheckShortCodeExists(code string) (bool, error) {
	for _, link := range f.links {
		if link.ShortCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLinkStore) RegisterClick(link *models.Link, event *models.TrackingEvent) (bool, error) {
	// availability is rechecked inside the store transaction, same as the
	// repository's locked re-read
	if !link.CanBeClicked() {
		return false, models.ErrLinkUnavailable
	}
	unique := true
	for _, e := range f.events {
		if e.LinkID != nil && *e.LinkID == link.ID &&
			e.ClickHash == event.ClickHash && e.EventType == models.EventTypeClick {
			unique = false
			break
		}
	}
	link.TotalClicks++
	if unique {
		link.UniqueClicks++
	}
	event.IsUnique = unique
	f.events = append(f.events, event)
	return unique, nil
}

func (f *fakeLinkStore) RegisterConversion(link *models.Link, event *models.TrackingEvent) error {
	link.TotalConversions++
	f.events = append(f.events, event)
	return nil
}

// fakeCampaignCounters records counter bumps keyed by campaign.
type fakeCampaignCounters struct {
	campaigns   map[string]*models.Campaign
	clicks      int
	conversions int
	rewards     int
}

func (f *fakeCampaignCounters) GetByID(id string) (*models.Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return c, nil
}

func (f *fakeCampaignCounters) IncrementCounters(campaignID string, clicks, conversions, rewards int) error {
	f.clicks += clicks
	f.conversions += conversions
	f.rewards += rewards
	if c, ok := f.campaigns[campaignID]; ok {
		c.TotalClicks += clicks
		c.TotalConversions += conversions
		c.TotalRewardsGiven += rewards
	}
	return nil
}

type fakeChannelCounters struct {
	clicks      int
	conversions int
}

func (f *fakeChannelCounters) IncrementCounters(channelID string, clicks, conversions int) error {
	f.clicks += clicks
	f.conversions += conversions
	return nil
}

func newClickFixture(t *testing.T) (*LinkService, *fakeLinkStore, *fakeCampaignCounters, *fakeChannelCounters, *models.Link) {
	t.Helper()

	linkStore := newFakeLinkStore()
	campaignID := uuid.NewString()
	campaigns := &fakeCampaignCounters{campaigns: map[string]*models.Campaign{
		campaignID: {ID: campaignID, PublicSlug: "summer-promo", IsActive: true},
	}}
	channels := &fakeChannelCounters{}
	svc := NewLinkService(linkStore, campaigns, channels, NewStaticGeoResolver(), nil)

	link, err := svc.CreateLink(campaignID, uuid.NewString(), &models.CreateLinkRequest{
		LinkName:  "Telegram promo",
		UTMSource: "telegram",
		UTMMedium: "social",
	})
	require.NoError(t, err)

	return svc, linkStore, campaigns, channels, link
}

func TestCreateLink_BuildsURLs(t *testing.T) {
	_, _, _, _, link := newClickFixture(t)

	assert.Len(t, link.ShortCode, 8)
	assert.Equal(t, "/r/"+link.ShortCode+"?utm_source=telegram&utm_medium=social", link.FullURL)
	assert.Contains(t, link.QRCodeURL, "api.qrserver.com")
	assert.True(t, link.IsActive)
}

func TestRegisterClick_DedupByClientHash(t *testing.T) {
	svc, store, campaigns, channels, link := newClickFixture(t)

	first, err := svc.RegisterClick(link.ShortCode, "203.0.113.7", "Mozilla/5.0 Chrome", "https://t.me")
	require.NoError(t, err)
	assert.True(t, first.Registered)
	assert.True(t, first.Unique)
	assert.True(t, strings.HasSuffix(first.RedirectURL, "/campaigns/summer-promo"))

	repeat, err := svc.RegisterClick(link.ShortCode, "203.0.113.7", "Mozilla/5.0 Chrome", "https://t.me")
	require.NoError(t, err)
	assert.True(t, repeat.Registered)
	assert.False(t, repeat.Unique)

	other, err := svc.RegisterClick(link.ShortCode, "203.0.113.8", "Mozilla/5.0 Chrome", "")
	require.NoError(t, err)
	assert.True(t, other.Unique)

	assert.Equal(t, 3, link.TotalClicks)
	assert.Equal(t, 2, link.UniqueClicks)
	assert.Equal(t, 3, campaigns.clicks)
	assert.Equal(t, 0, channels.clicks)
	assert.Len(t, store.events, 3)
}

func TestRegisterClick_GatedLink(t *testing.T) {
	svc, store, campaigns, _, link := newClickFixture(t)
	link.IsActive = false

	result, err := svc.RegisterClick(link.ShortCode, "203.0.113.7", "Mozilla/5.0", "")
	require.NoError(t, err)
	assert.False(t, result.Registered)
	assert.Equal(t, "link is inactive", result.Reason)
	assert.Empty(t, store.events)
	assert.Zero(t, campaigns.clicks)
}

func TestRegisterClick_CapReached(t *testing.T) {
	svc, _, _, _, link := newClickFixture(t)
	one := 1

	link.MaxClicks = &one
	result, err := svc.RegisterClick(link.ShortCode, "203.0.113.7", "Mozilla/5.0", "")
	require.NoError(t, err)
	assert.True(t, result.Registered)

	result, err = svc.RegisterClick(link.ShortCode, "203.0.113.9", "Mozilla/5.0", "")
	require.NoError(t, err)
	assert.False(t, result.Registered)
	assert.Equal(t, "link click limit reached", result.Reason)
}

// capRacingLinkStore simulates a concurrent click filling the cap between
// the service's availability read and the store transaction.
type capRacingLinkStore struct {
	*fakeLinkStore
}

func (f *capRacingLinkStore) RegisterClick(link *models.Link, event *models.TrackingEvent) (bool, error) {
	link.TotalClicks = *link.MaxClicks
	return false, models.ErrLinkUnavailable
}

func TestRegisterClick_CapRaceRejectedInStore(t *testing.T) {
	base := newFakeLinkStore()
	campaignID := uuid.NewString()
	campaigns := &fakeCampaignCounters{campaigns: map[string]*models.Campaign{
		campaignID: {ID: campaignID, PublicSlug: "summer-promo", IsActive: true},
	}}
	svc := NewLinkService(&capRacingLinkStore{base}, campaigns, &fakeChannelCounters{}, NewStaticGeoResolver(), nil)

	one := 1
	link, err := svc.CreateLink(campaignID, uuid.NewString(), &models.CreateLinkRequest{
		LinkName:  "promo",
		MaxClicks: &one,
	})
	require.NoError(t, err)

	result, err := svc.RegisterClick(link.ShortCode, "203.0.113.7", "Mozilla/5.0", "")
	require.NoError(t, err)
	assert.False(t, result.Registered)
	assert.Equal(t, "link click limit reached", result.Reason)
	assert.Empty(t, base.events)
	assert.Zero(t, campaigns.clicks)
}

func TestRegisterClick_UnknownCode(t *testing.T) {
	svc, _, _, _, _ := newClickFixture(t)

	_, err := svc.RegisterClick("nope1234", "203.0.113.7", "Mozilla/5.0", "")
	assert.ErrorContains(t, err, "link not found")
}

func TestRegisterConversion(t *testing.T) {
	svc, store, campaigns, _, link := newClickFixture(t)

	userID := uuid.NewString()
	event, err := svc.RegisterConversion(link.ShortCode, "203.0.113.7", "Mozilla/5.0", "", &models.RegisterConversionRequest{
		UserID:    &userID,
		EventData: map[string]interface{}{"order_id": "A-42"},
	})
	require.NoError(t, err)

	assert.True(t, event.IsConversion)
	assert.Equal(t, userID, *event.UserID)
	assert.Equal(t, 1, link.TotalConversions)
	assert.Equal(t, 1, campaigns.conversions)
	assert.Len(t, store.events, 1)
}

type fakeMilestoneNotifier struct {
	milestones []int
}

func (f *fakeMilestoneNotifier) NotifyCampaignMilestone(userID, campaignTitle string, milestone int) error {
	f.milestones = append(f.milestones, milestone)
	return nil
}

func TestRegisterClick_MilestoneNotification(t *testing.T) {
	linkStore := newFakeLinkStore()
	campaignID := uuid.NewString()
	campaigns := &fakeCampaignCounters{campaigns: map[string]*models.Campaign{
		campaignID: {
			ID:          campaignID,
			UserID:      uuid.NewString(),
			Title:       "Summer Promo",
			PublicSlug:  "summer-promo",
			IsActive:    true,
			TotalClicks: 99,
		},
	}}
	notifier := &fakeMilestoneNotifier{}
	svc := NewLinkService(linkStore, campaigns, &fakeChannelCounters{}, NewStaticGeoResolver(), notifier)

	link, err := svc.CreateLink(campaignID, uuid.NewString(), &models.CreateLinkRequest{LinkName: "promo"})
	require.NoError(t, err)

	// click 100 fires the milestone, click 101 does not
	_, err = svc.RegisterClick(link.ShortCode, "203.0.113.7", "Mozilla/5.0", "")
	require.NoError(t, err)
	assert.Equal(t, []int{100}, notifier.milestones)

	_, err = svc.RegisterClick(link.ShortCode, "203.0.113.8", "Mozilla/5.0", "")
	require.NoError(t, err)
	assert.Len(t, notifier.milestones, 1)
}

func TestRegisterClick_EventEnriched(t *testing.T) {
	svc, store, _, _, link := newClickFixture(t)

	_, err := svc.RegisterClick(link.ShortCode, "10.0.0.5", chromeWindows, "")
	require.NoError(t, err)

	event := store.events[0]
	assert.Equal(t, "Chrome", event.Browser)
	assert.Equal(t, "Windows", event.OS)
	assert.Equal(t, "RU", event.Country)
	assert.Equal(t, "Moscow", event.City)
	assert.NotEmpty(t, event.ClickHash)
}

const chromeWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
