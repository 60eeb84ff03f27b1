package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinorefs/dinorefs-backend/internal/database/repository"
	"github.com/dinorefs/dinorefs-backend/internal/models"
	"github.com/dinorefs/dinorefs-backend/internal/services"
	"github.com/dinorefs/dinorefs-backend/internal/utils"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
}

func NewCampaignHandler(db *gorm.DB, cache *services.CacheService) *CampaignHandler {
	campaignRepo := repository.NewCampaignRepository(db)
	return &CampaignHandler{
		campaignService: services.NewCampaignService(campaignRepo, cache),
	}
}

// CreateCampaign godoc
// @Summary Create a new campaign
// @Description Create a referral campaign for the authenticated user
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCampaignRequest true "Create campaign request"
// @Success 201 {object} models.CampaignResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	campaign, err := h.campaignService.CreateCampaign(userID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "invalid campaign type") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toCampaignResponse(campaign, false))
}

// GetCampaigns godoc
// @Summary List campaigns
// @Description List the authenticated user's campaigns with pagination
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns [get]
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	page, pageSize := utils.ParsePaginationFromQuery(c.Query("page"), c.Query("page_size"))

	campaigns, total, err := h.campaignService.GetCampaigns(userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get campaigns", "details": err.Error()})
		return
	}

	responses := make([]*models.CampaignResponse, len(campaigns))
	for i, campaign := range campaigns {
		responses[i] = toCampaignResponse(campaign, false)
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns":  responses,
		"pagination": utils.CalculatePaginationInfo(int(total), page, pageSize),
	})
}

// GetCampaignByID godoc
// @Summary Get campaign by ID
// @Description Get one campaign with its channels and steps (owner only)
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id} [get]
func (h *CampaignHandler) GetCampaignByID(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")

	campaign, err := h.campaignService.GetCampaign(userID, campaignID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	c.JSON(http.StatusOK, toCampaignResponse(campaign, true))
}

// UpdateCampaign godoc
// @Summary Update campaign
// @Description Update a campaign's mutable fields (owner only)
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body models.UpdateCampaignRequest true "Update campaign request"
// @Success 200 {object} models.CampaignResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id} [put]
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")

	var req models.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	campaign, err := h.campaignService.UpdateCampaign(userID, campaignID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update campaign", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toCampaignResponse(campaign, false))
}

// DeleteCampaign godoc
// @Summary Delete campaign
// @Description Delete a campaign and everything under it (owner only)
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id} [delete]
func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")

	if err := h.campaignService.DeleteCampaign(userID, campaignID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete campaign", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted"})
}
