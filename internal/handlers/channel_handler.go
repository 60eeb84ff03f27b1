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

type ChannelHandler struct {
	channelService *services.ChannelService
}

func NewChannelHandler(db *gorm.DB) *ChannelHandler {
	channelRepo := repository.NewChannelRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	return &ChannelHandler{
		channelService: services.NewChannelService(channelRepo, campaignRepo),
	}
}

// CreateChannel godoc
// @Summary Create a channel
// @Description Add a distribution channel to a campaign (owner only)
// @Tags channels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body models.CreateChannelRequest true "Create channel request"
// @Success 201 {object} models.ChannelResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/channels [post]
func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")

	var req models.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	channel, err := h.channelService.CreateChannel(userID, campaignID, &req)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "invalid channel type"):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case strings.Contains(err.Error(), "not found"):
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create channel", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, toChannelResponse(channel, false))
}

// GetChannels godoc
// @Summary List channels
// @Description List a campaign's channels in priority order (owner only)
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {array} models.ChannelResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/channels [get]
func (h *ChannelHandler) GetChannels(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")

	channels, err := h.channelService.GetChannels(userID, campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	responses := make([]*models.ChannelResponse, len(channels))
	for i, channel := range channels {
		responses[i] = toChannelResponse(channel, true)
	}
	c.JSON(http.StatusOK, responses)
}

// GetChannelByID godoc
// @Summary Get channel by ID
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param channel_id path string true "Channel ID"
// @Success 200 {object} models.ChannelResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/channels/{channel_id} [get]
func (h *ChannelHandler) GetChannelByID(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")
	channelID := c.Param("channel_id")

	channel, err := h.channelService.GetChannel(userID, campaignID, channelID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toChannelResponse(channel, true))
}

// UpdateChannel godoc
// @Summary Update channel
// @Tags channels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param channel_id path string true "Channel ID"
// @Param request body models.UpdateChannelRequest true "Update channel request"
// @Success 200 {object} models.ChannelResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/channels/{channel_id} [put]
func (h *ChannelHandler) UpdateChannel(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")
	channelID := c.Param("channel_id")

	var req models.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	channel, err := h.channelService.UpdateChannel(userID, campaignID, channelID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update channel", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toChannelResponse(channel, false))
}

// DeleteChannel godoc
// @Summary Delete channel
// @Description Delete a channel with its steps and links (owner only)
// @Tags channels
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param channel_id path string true "Channel ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/channels/{channel_id} [delete]
func (h *ChannelHandler) DeleteChannel(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")
	channelID := c.Param("channel_id")

	if err := h.channelService.DeleteChannel(userID, campaignID, channelID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete channel", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Channel deleted"})
}
