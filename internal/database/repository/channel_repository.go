package repository

import (
	"gorm.io/gorm"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Create creates a new channel
func (r *ChannelRepository) Create(channel *models.Channel) error {
	return r.db.Create(channel).Error
}

// GetByID retrieves a channel by ID
func (r *ChannelRepository) GetByID(id string) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order ASC")
	}).First(&channel, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

// GetByCampaignID retrieves a campaign's channels ordered by priority
func (r *ChannelRepository) GetByCampaignID(campaignID string) ([]*models.Channel, error) {
	var channels []*models.Channel
	err := r.db.Where("campaign_id = ?", campaignID).
		Order("priority DESC, created_at ASC").
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Find(&channels).Error
	return channels, err
}

// Update updates a channel
func (r *ChannelRepository) Update(channel *models.Channel) error {
	return r.db.Save(channel).Error
}

// Delete deletes a channel
func (r *ChannelRepository) Delete(id string) error {
	return r.db.Delete(&models.Channel{}, "id = ?", id).Error
}

// IncrementCounters bumps the denormalized channel counters atomically
func (r *ChannelRepository) IncrementCounters(channelID string, clicks, conversions int) error {
	updates := map[string]interface{}{}
	if clicks != 0 {
		updates["total_clicks"] = gorm.Expr("total_clicks + ?", clicks)
	}
	if conversions != 0 {
		updates["total_conversions"] = gorm.Expr("total_conversions + ?", conversions)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Channel{}).Where("id = ?", channelID).UpdateColumns(updates).Error
}
