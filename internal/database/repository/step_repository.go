package repository

import (
	"gorm.io/gorm"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

type StepRepository struct {
	db *gorm.DB
}

func NewStepRepository(db *gorm.DB) *StepRepository {
	return &StepRepository{db: db}
}

// Create creates a new step
func (r *StepRepository) Create(step *models.Step) error {
	return r.db.Create(step).Error
}

// GetByID retrieves a step by ID
func (r *StepRepository) GetByID(id string) (*models.Step, error) {
	var step models.Step
	err := r.db.Preload("Channel").First(&step, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &step, nil
}

// GetByChannelID retrieves a channel's steps in funnel order
func (r *StepRepository) GetByChannelID(channelID string) ([]*models.Step, error) {
	var steps []*models.Step
	err := r.db.Where("channel_id = ?", channelID).
		Order("step_order ASC, created_at ASC").
		Find(&steps).Error
	return steps, err
}

// Update updates a step
func (r *StepRepository) Update(step *models.Step) error {
	return r.db.Save(step).Error
}

// Delete deletes a step
func (r *StepRepository) Delete(id string) error {
	return r.db.Delete(&models.Step{}, "id = ?", id).Error
}

// IncrementCounters bumps the attempt and completion counters atomically
func (r *StepRepository) IncrementCounters(stepID string, attempts, completions int) error {
	updates := map[string]interface{}{}
	if attempts != 0 {
		updates["total_attempts"] = gorm.Expr("total_attempts + ?", attempts)
	}
	if completions != 0 {
		updates["total_completions"] = gorm.Expr("total_completions + ?", completions)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Step{}).Where("id = ?", stepID).UpdateColumns(updates).Error
}
