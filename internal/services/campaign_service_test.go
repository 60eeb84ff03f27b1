package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// fakeCampaignStore is an in-memory CampaignStore for service tests. Child
// rows are tracked per campaign so deletes can mirror the repository's
// cascade transaction.
type fakeCampaignStore struct {
	campaigns  map[string]*models.Campaign
	takenCodes map[string]bool
	takenSlugs map[string]bool
	channels   map[string][]*models.Channel
	links      map[string][]*models.Link
	events     map[string][]*models.TrackingEvent
}

func newFakeCampaignStore() *fakeCampaignStore {
	return &fakeCampaignStore{
		campaigns:  map[string]*models.Campaign{},
		takenCodes: map[string]bool{},
		takenSlugs: map[string]bool{},
		channels:   map[string][]*models.Channel{},
		links:      map[string][]*models.Link{},
		events:     map[string][]*models.TrackingEvent{},
	}
}

func (f *fakeCampaignStore) Create(c *models.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	f.campaigns[c.ID] = c
	f.takenCodes[c.CampaignCode] = true
	f.takenSlugs[c.PublicSlug] = true
	return nil
}

func (f *fakeCampaignStore) GetByUserIDAndID(userID, campaignID string) (*models.Campaign, error) {
	c, ok := f.campaigns[campaignID]
	if !ok || c.UserID != userID {
		return nil, errors.New("record not found")
	}
	return c, nil
}

func (f *fakeCampaignStore) GetByPublicSlug(slug string) (*models.Campaign, error) {
	for _, c := range f.campaigns {
		if c.PublicSlug == slug {
			return c, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeCampaignStore) GetByUserID(userID string, page, pageSize int) ([]*models.Campaign, int64, error) {
	var out []*models.Campaign
	for _, c := range f.campaigns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeCampaignStore) Update(c *models.Campaign) error {
	f.campaigns[c.ID] = c
	return nil
}

func (f *fakeCampaignStore) DeleteByUserIDAndID(userID, campaignID string) error {
	c, ok := f.campaigns[campaignID]
	if !ok || c.UserID != userID {
		return errors.New("record not found")
	}
	delete(f.campaigns, campaignID)
	delete(f.channels, campaignID)
	delete(f.links, campaignID)
	delete(f.events, campaignID)
	return nil
}

func (f *fakeCampaignStore) CheckCodeExists(code string) (bool, error) {
	return f.takenCodes[code], nil
}

func (f *fakeCampaignStore) CheckSlugExists(slug string) (bool, error) {
	return f.takenSlugs[slug], nil
}

func TestCreateCampaign(t *testing.T) {
	store := newFakeCampaignStore()
	svc := NewCampaignService(store, nil)

	campaign, err := svc.CreateCampaign("user-1", &models.CreateCampaignRequest{
		Title:        "Summer Promo",
		CampaignType: models.CampaignTypePromotion,
	})
	require.NoError(t, err)

	assert.Equal(t, "user-1", campaign.UserID)
	assert.True(t, campaign.IsActive)
	assert.Len(t, campaign.CampaignCode, 8)
	assert.Equal(t, "summer-promo", campaign.PublicSlug)
}

func TestCreateCampaign_InvalidType(t *testing.T) {
	svc := NewCampaignService(newFakeCampaignStore(), nil)

	_, err := svc.CreateCampaign("user-1", &models.CreateCampaignRequest{
		Title:        "Bad",
		CampaignType: "pyramid",
	})
	assert.ErrorContains(t, err, "invalid campaign type")
}

func TestCreateCampaign_SlugCollisionGetsSuffix(t *testing.T) {
	store := newFakeCampaignStore()
	store.takenSlugs["summer-promo"] = true
	store.takenSlugs["summer-promo-1"] = true
	svc := NewCampaignService(store, nil)

	campaign, err := svc.CreateCampaign("user-1", &models.CreateCampaignRequest{
		Title:        "Summer Promo",
		CampaignType: models.CampaignTypePromotion,
	})
	require.NoError(t, err)
	assert.Equal(t, "summer-promo-2", campaign.PublicSlug)
}

func TestUpdateCampaign_CodeAndSlugImmutable(t *testing.T) {
	store := newFakeCampaignStore()
	svc := NewCampaignService(store, nil)

	campaign, err := svc.CreateCampaign("user-1", &models.CreateCampaignRequest{
		Title:        "Summer Promo",
		CampaignType: models.CampaignTypePromotion,
	})
	require.NoError(t, err)

	code, slug := campaign.CampaignCode, campaign.PublicSlug
	newTitle := "Autumn Promo"
	inactive := false

	updated, err := svc.UpdateCampaign("user-1", campaign.ID, &models.UpdateCampaignRequest{
		Title:    &newTitle,
		IsActive: &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "Autumn Promo", updated.Title)
	assert.False(t, updated.IsActive)
	assert.Equal(t, code, updated.CampaignCode)
	assert.Equal(t, slug, updated.PublicSlug)
}

func TestUpdateCampaign_NotOwner(t *testing.T) {
	store := newFakeCampaignStore()
	svc := NewCampaignService(store, nil)

	campaign, err := svc.CreateCampaign("user-1", &models.CreateCampaignRequest{
		Title:        "Summer Promo",
		CampaignType: models.CampaignTypePromotion,
	})
	require.NoError(t, err)

	title := "Stolen"
	_, err = svc.UpdateCampaign("user-2", campaign.ID, &models.UpdateCampaignRequest{Title: &title})
	assert.ErrorContains(t, err, "campaign not found")
}

func TestDeleteCampaign_RemovesChildren(t *testing.T) {
	store := newFakeCampaignStore()
	svc := NewCampaignService(store, nil)

	campaign, err := svc.CreateCampaign("user-1", &models.CreateCampaignRequest{
		Title:        "Summer Promo",
		CampaignType: models.CampaignTypePromotion,
	})
	require.NoError(t, err)

	store.channels[campaign.ID] = []*models.Channel{{
		ID:         uuid.NewString(),
		CampaignID: campaign.ID,
		Steps:      []models.Step{{StepType: models.StepTypeComment, StepName: "Leave a comment"}},
	}}
	store.links[campaign.ID] = []*models.Link{{
		ID: uuid.NewString(), CampaignID: campaign.ID, ShortCode: "abc12345",
	}}
	store.events[campaign.ID] = []*models.TrackingEvent{{
		CampaignID: campaign.ID, EventType: models.EventTypeClick,
	}}

	require.NoError(t, svc.DeleteCampaign("user-1", campaign.ID))

	assert.Empty(t, store.campaigns)
	assert.Empty(t, store.channels)
	assert.Empty(t, store.links)
	assert.Empty(t, store.events)

	// the slug must stop resolving on the public surface
	_, err = svc.GetPublicCampaign(campaign.PublicSlug)
	assert.ErrorContains(t, err, "campaign not found")
}

func TestDeleteCampaign_NotOwner(t *testing.T) {
	store := newFakeCampaignStore()
	svc := NewCampaignService(store, nil)

	campaign, err := svc.CreateCampaign("user-1", &models.CreateCampaignRequest{
		Title:        "Summer Promo",
		CampaignType: models.CampaignTypePromotion,
	})
	require.NoError(t, err)

	err = svc.DeleteCampaign("user-2", campaign.ID)
	assert.ErrorContains(t, err, "campaign not found")
	assert.Len(t, store.campaigns, 1)
}

func TestGetPublicCampaign_InactiveHidden(t *testing.T) {
	store := newFakeCampaignStore()
	svc := NewCampaignService(store, nil)

	campaign, err := svc.CreateCampaign("user-1", &models.CreateCampaignRequest{
		Title:        "Summer Promo",
		CampaignType: models.CampaignTypePromotion,
	})
	require.NoError(t, err)

	resp, err := svc.GetPublicCampaign(campaign.PublicSlug)
	require.NoError(t, err)
	assert.Equal(t, campaign.PublicSlug, resp.PublicSlug)

	campaign.IsActive = false
	_, err = svc.GetPublicCampaign(campaign.PublicSlug)
	assert.ErrorContains(t, err, "campaign not found")
}

func TestIsRunning(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, IsRunning(&models.Campaign{IsActive: true}, now))
	assert.True(t, IsRunning(&models.Campaign{IsActive: true, StartDate: &past, EndDate: &future}, now))
	assert.False(t, IsRunning(&models.Campaign{IsActive: false}, now))
	assert.False(t, IsRunning(&models.Campaign{IsActive: true, StartDate: &future}, now))
	assert.False(t, IsRunning(&models.Campaign{IsActive: true, EndDate: &past}, now))
}
