package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/dinorefs/dinorefs-backend/internal/models"
	"github.com/dinorefs/dinorefs-backend/internal/utils"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create creates a new campaign
func (r *CampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(id string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.Preload("Channels.Steps").
		First(&campaign, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetByUserIDAndID retrieves a campaign scoped to its owner
func (r *CampaignRepository) GetByUserIDAndID(userID, campaignID string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.Where("user_id = ? AND id = ?", userID, campaignID).
		Preload("Channels.Steps").
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetByPublicSlug retrieves a campaign by its public slug
func (r *CampaignRepository) GetByPublicSlug(slug string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.Where("public_slug = ?", slug).
		Preload("Channels.Steps").
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetByUserID retrieves the owner's campaigns with pagination
func (r *CampaignRepository) GetByUserID(userID string, page, pageSize int) ([]*models.Campaign, int64, error) {
	var campaigns []*models.Campaign
	var total int64
	query := r.db.Model(&models.Campaign{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset(utils.CalculateOffset(page, pageSize)).Limit(pageSize).
		Preload("Channels").
		Find(&campaigns).Error
	return campaigns, total, err
}

// GetTopByClicks retrieves the owner's campaigns ordered by total clicks
func (r *CampaignRepository) GetTopByClicks(userID string, limit int) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	err := r.db.Where("user_id = ?", userID).
		Order("total_clicks DESC").
		Limit(limit).
		Find(&campaigns).Error
	return campaigns, err
}

// GetAllActive retrieves all active campaigns
func (r *CampaignRepository) GetAllActive() ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	err := r.db.Where("is_active = ?", true).Find(&campaigns).Error
	return campaigns, err
}

// Update updates a campaign
func (r *CampaignRepository) Update(campaign *models.Campaign) error {
	return r.db.Save(campaign).Error
}

// DeleteByUserIDAndID deletes a campaign scoped to its owner together with
// its channels, steps, links and tracking events. Migrations run with FK
// constraint creation disabled, so the children are removed here rather
// than by the database.
func (r *CampaignRepository) DeleteByUserIDAndID(userID, campaignID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var campaign models.Campaign
		if err := tx.Where("user_id = ? AND id = ?", userID, campaignID).First(&campaign).Error; err != nil {
			return err
		}

		if err := tx.Where("campaign_id = ?", campaignID).Delete(&models.TrackingEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("campaign_id = ?", campaignID).Delete(&models.Link{}).Error; err != nil {
			return err
		}
		channelIDs := tx.Model(&models.Channel{}).Select("id").Where("campaign_id = ?", campaignID)
		if err := tx.Where("channel_id IN (?)", channelIDs).Delete(&models.Step{}).Error; err != nil {
			return err
		}
		if err := tx.Where("campaign_id = ?", campaignID).Delete(&models.Channel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&campaign).Error
	})
}

// CheckCodeExists checks if a campaign code is already taken
func (r *CampaignRepository) CheckCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Campaign{}).Where("campaign_code = ?", code).Count(&count).Error
	return count > 0, err
}

// CheckSlugExists checks if a public slug is already taken
func (r *CampaignRepository) CheckSlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Campaign{}).Where("public_slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// IncrementCounters bumps the denormalized campaign counters atomically
func (r *CampaignRepository) IncrementCounters(campaignID string, clicks, conversions, rewards int) error {
	updates := map[string]interface{}{}
	if clicks != 0 {
		updates["total_clicks"] = gorm.Expr("total_clicks + ?", clicks)
	}
	if conversions != 0 {
		updates["total_conversions"] = gorm.Expr("total_conversions + ?", conversions)
	}
	if rewards != 0 {
		updates["total_rewards_given"] = gorm.Expr("total_rewards_given + ?", rewards)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Campaign{}).Where("id = ?", campaignID).UpdateColumns(updates).Error
}

// CountCreatedBetween counts campaigns created inside [since, until)
func (r *CampaignRepository) CountCreatedBetween(since, until time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Campaign{}).Where("created_at >= ? AND created_at < ?", since, until).Count(&count).Error
	return count, err
}

// SumCountersByUser sums the denormalized counters over the owner's campaigns
func (r *CampaignRepository) SumCountersByUser(userID string) (clicks, conversions, rewards int64, err error) {
	row := struct {
		Clicks      int64
		Conversions int64
		Rewards     int64
	}{}
	err = r.db.Model(&models.Campaign{}).
		Select("COALESCE(SUM(total_clicks),0) as clicks, COALESCE(SUM(total_conversions),0) as conversions, COALESCE(SUM(total_rewards_given),0) as rewards").
		Where("user_id = ?", userID).
		Scan(&row).Error
	return row.Clicks, row.Conversions, row.Rewards, err
}

// CountByUser counts the owner's campaigns, total and active
func (r *CampaignRepository) CountByUser(userID string) (total, active int64, err error) {
	if err = r.db.Model(&models.Campaign{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&models.Campaign{}).Where("user_id = ? AND is_active = ?", userID, true).Count(&active).Error
	return total, active, err
}
