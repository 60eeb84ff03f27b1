package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinorefs/dinorefs-backend/internal/database/repository"
	"github.com/dinorefs/dinorefs-backend/internal/models"
	"github.com/dinorefs/dinorefs-backend/internal/services"
)

type StepHandler struct {
	stepService    *services.StepService
	channelService *services.ChannelService
}

func NewStepHandler(db *gorm.DB, notifier services.RewardNotifier) *StepHandler {
	stepRepo := repository.NewStepRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	trackingRepo := repository.NewTrackingRepository(db)

	return &StepHandler{
		stepService:    services.NewStepService(stepRepo, channelRepo, campaignRepo, trackingRepo, notifier),
		channelService: services.NewChannelService(channelRepo, campaignRepo),
	}
}

// ownerChannel resolves the channel while verifying the caller owns the
// campaign it belongs to.
func (h *StepHandler) ownerChannel(c *gin.Context) (string, bool) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")
	channelID := c.Param("channel_id")

	if _, err := h.channelService.GetChannel(userID, campaignID, channelID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return channelID, true
}

// CreateStep godoc
// @Summary Create a step
// @Description Add a funnel step to a channel (owner only)
// @Tags steps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param channel_id path string true "Channel ID"
// @Param request body models.CreateStepRequest true "Create step request"
// @Success 201 {object} models.StepResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/channels/{channel_id}/steps [post]
func (h *StepHandler) CreateStep(c *gin.Context) {
	channelID, ok := h.ownerChannel(c)
	if !ok {
		return
	}

	var req models.CreateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	step, err := h.stepService.CreateStep(channelID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "invalid step type") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create step", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toStepResponse(step))
}

// GetSteps godoc
// @Summary List steps
// @Description List a channel's steps in funnel order (owner only)
// @Tags steps
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param channel_id path string true "Channel ID"
// @Success 200 {array} models.StepResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/channels/{channel_id}/steps [get]
func (h *StepHandler) GetSteps(c *gin.Context) {
	channelID, ok := h.ownerChannel(c)
	if !ok {
		return
	}

	steps, err := h.stepService.GetSteps(channelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get steps", "details": err.Error()})
		return
	}

	responses := make([]*models.StepResponse, len(steps))
	for i, step := range steps {
		responses[i] = toStepResponse(step)
	}
	c.JSON(http.StatusOK, responses)
}

// UpdateStep godoc
// @Summary Update step
// @Tags steps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param channel_id path string true "Channel ID"
// @Param step_id path string true "Step ID"
// @Param request body models.UpdateStepRequest true "Update step request"
// @Success 200 {object} models.StepResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/channels/{channel_id}/steps/{step_id} [put]
func (h *StepHandler) UpdateStep(c *gin.Context) {
	channelID, ok := h.ownerChannel(c)
	if !ok {
		return
	}

	var req models.UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	step, err := h.stepService.UpdateStep(channelID, c.Param("step_id"), &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update step", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toStepResponse(step))
}

// DeleteStep godoc
// @Summary Delete step
// @Tags steps
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param channel_id path string true "Channel ID"
// @Param step_id path string true "Step ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/channels/{channel_id}/steps/{step_id} [delete]
func (h *StepHandler) DeleteStep(c *gin.Context) {
	channelID, ok := h.ownerChannel(c)
	if !ok {
		return
	}

	if err := h.stepService.DeleteStep(channelID, c.Param("step_id")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete step", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Step deleted"})
}
