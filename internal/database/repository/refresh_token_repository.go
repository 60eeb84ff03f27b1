package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create creates a new refresh token
func (r *RefreshTokenRepository) Create(refreshToken *models.RefreshToken) error {
	return r.db.Create(refreshToken).Error
}

// GetByToken retrieves a refresh token by token string
func (r *RefreshTokenRepository) GetByToken(token string) (*models.RefreshToken, error) {
	var refreshToken models.RefreshToken
	err := r.db.Where("token = ? AND is_revoked = ?", token, false).First(&refreshToken).Error
	if err != nil {
		return nil, err
	}
	return &refreshToken, nil
}

// RevokeToken revokes a specific refresh token
func (r *RefreshTokenRepository) RevokeToken(token string) error {
	return r.db.Model(&models.RefreshToken{}).Where("token = ?", token).Update("is_revoked", true).Error
}

// RevokeAllUserTokens revokes all refresh tokens for a user
func (r *RefreshTokenRepository) RevokeAllUserTokens(userID string) error {
	return r.db.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Update("is_revoked", true).Error
}

// PruneStale deletes expired and revoked refresh tokens, returning how many
// rows were removed.
func (r *RefreshTokenRepository) PruneStale() (int64, error) {
	var pruned int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		pruned += res.RowsAffected

		res = tx.Where("is_revoked = ?", true).Delete(&models.RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		pruned += res.RowsAffected
		return nil
	})
	return pruned, err
}

// CountActiveTokensByUser counts active refresh tokens for a user
func (r *RefreshTokenRepository) CountActiveTokensByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.RefreshToken{}).Where("user_id = ? AND is_revoked = ?", userID, false).Count(&count).Error
	return count, err
}
