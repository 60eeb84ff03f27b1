package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Create creates a new link
func (r *LinkRepository) Create(link *models.Link) error {
	return r.db.Create(link).Error
}

// GetByID retrieves a link by ID
func (r *LinkRepository) GetByID(id string) (*models.Link, error) {
	var link models.Link
	err := r.db.First(&link, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// GetByShortCode retrieves a link by its short code
func (r *LinkRepository) GetByShortCode(code string) (*models.Link, error) {
	var link models.Link
	err := r.db.Where("short_code = ?", code).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// GetByCampaignID retrieves a campaign's links
func (r *LinkRepository) GetByCampaignID(campaignID string) ([]*models.Link, error) {
	var links []*models.Link
	err := r.db.Where("campaign_id = ?", campaignID).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

// Update updates a link
func (r *LinkRepository) Update(link *models.Link) error {
	return r.db.Save(link).Error
}

// Delete deletes a link
func (r *LinkRepository) Delete(id string) error {
	return r.db.Delete(&models.Link{}, "id = ?", id).Error
}

// CheckShortCodeExists checks if a short code is already taken
func (r *LinkRepository) CheckShortCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Link{}).Where("short_code = ?", code).Count(&count).Error
	return count > 0, err
}

// RegisterClick performs the click write path in one transaction: the
// dedup lookup against prior events, the link counter bumps and the event
// append all commit or roll back together. The link row is locked FOR
// UPDATE and its availability rechecked under the lock, so concurrent
// clicks cannot push a capped or just-deactivated link past its limit;
// a failed recheck returns models.ErrLinkUnavailable. Returns whether the
// click was the first from this (ip, ua) pair.
func (r *LinkRepository) RegisterClick(link *models.Link, event *models.TrackingEvent) (bool, error) {
	isUnique := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var locked models.Link
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, "id = ?", link.ID).Error; err != nil {
			return err
		}
		if !locked.CanBeClicked() {
			return models.ErrLinkUnavailable
		}

		var prior int64
		if err := tx.Model(&models.TrackingEvent{}).
			Where("link_id = ? AND click_hash = ? AND event_type = ?", link.ID, event.ClickHash, models.EventTypeClick).
			Count(&prior).Error; err != nil {
			return err
		}
		isUnique = prior == 0

		updates := map[string]interface{}{
			"total_clicks":    gorm.Expr("total_clicks + 1"),
			"last_clicked_at": time.Now(),
		}
		if isUnique {
			updates["unique_clicks"] = gorm.Expr("unique_clicks + 1")
		}
		if err := tx.Model(&models.Link{}).Where("id = ?", link.ID).UpdateColumns(updates).Error; err != nil {
			return err
		}

		event.IsUnique = isUnique
		return tx.Create(event).Error
	})
	return isUnique, err
}

// RegisterConversion bumps the conversion counter and appends the event in
// one transaction.
func (r *LinkRepository) RegisterConversion(link *models.Link, event *models.TrackingEvent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Link{}).Where("id = ?", link.ID).
			UpdateColumn("total_conversions", gorm.Expr("total_conversions + 1")).Error; err != nil {
			return err
		}
		return tx.Create(event).Error
	})
}
