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

type LinkHandler struct {
	linkService     *services.LinkService
	campaignService *services.CampaignService
}

func NewLinkHandler(db *gorm.DB) *LinkHandler {
	linkRepo := repository.NewLinkRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	return &LinkHandler{
		linkService:     services.NewLinkService(linkRepo, campaignRepo, channelRepo, services.NewStaticGeoResolver(), nil),
		campaignService: services.NewCampaignService(campaignRepo, nil),
	}
}

// ownerCampaign verifies the caller owns the campaign in the path.
func (h *LinkHandler) ownerCampaign(c *gin.Context) (string, bool) {
	userID := c.MustGet("user_id").(string)
	campaignID := c.Param("id")
	if _, err := h.campaignService.GetCampaign(userID, campaignID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return "", false
	}
	return campaignID, true
}

// CreateLink godoc
// @Summary Create a tracked link
// @Description Create a short link under a campaign (owner only)
// @Tags links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body models.CreateLinkRequest true "Create link request"
// @Success 201 {object} models.LinkResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	campaignID, ok := h.ownerCampaign(c)
	if !ok {
		return
	}
	userID := c.MustGet("user_id").(string)

	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	link, err := h.linkService.CreateLink(campaignID, userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create link", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toLinkResponse(link))
}

// GetLinks godoc
// @Summary List links
// @Description List a campaign's tracked links (owner only)
// @Tags links
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {array} models.LinkResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/links [get]
func (h *LinkHandler) GetLinks(c *gin.Context) {
	campaignID, ok := h.ownerCampaign(c)
	if !ok {
		return
	}

	links, err := h.linkService.GetLinks(campaignID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get links", "details": err.Error()})
		return
	}

	responses := make([]*models.LinkResponse, len(links))
	for i, link := range links {
		responses[i] = toLinkResponse(link)
	}
	c.JSON(http.StatusOK, responses)
}

// GetLinkByID godoc
// @Summary Get link by ID
// @Tags links
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param link_id path string true "Link ID"
// @Success 200 {object} models.LinkResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/links/{link_id} [get]
func (h *LinkHandler) GetLinkByID(c *gin.Context) {
	campaignID, ok := h.ownerCampaign(c)
	if !ok {
		return
	}

	link, err := h.linkService.GetLink(campaignID, c.Param("link_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	c.JSON(http.StatusOK, toLinkResponse(link))
}

// UpdateLink godoc
// @Summary Update link
// @Description Update a link; UTM changes rebuild the full URL
// @Tags links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param link_id path string true "Link ID"
// @Param request body models.UpdateLinkRequest true "Update link request"
// @Success 200 {object} models.LinkResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/links/{link_id} [put]
func (h *LinkHandler) UpdateLink(c *gin.Context) {
	campaignID, ok := h.ownerCampaign(c)
	if !ok {
		return
	}

	var req models.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	link, err := h.linkService.UpdateLink(campaignID, c.Param("link_id"), &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update link", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toLinkResponse(link))
}

// DeleteLink godoc
// @Summary Delete link
// @Tags links
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param link_id path string true "Link ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/links/{link_id} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	campaignID, ok := h.ownerCampaign(c)
	if !ok {
		return
	}

	if err := h.linkService.DeleteLink(campaignID, c.Param("link_id")); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete link", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted"})
}
