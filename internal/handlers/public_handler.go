package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinorefs/dinorefs-backend/internal/database/repository"
	"github.com/dinorefs/dinorefs-backend/internal/models"
	"github.com/dinorefs/dinorefs-backend/internal/services"
)

// PublicHandler serves the unauthenticated surface: short-link redirects,
// conversion postbacks, step completions and public campaign pages.
type PublicHandler struct {
	linkService     *services.LinkService
	stepService     *services.StepService
	campaignService *services.CampaignService
}

func NewPublicHandler(db *gorm.DB, cache *services.CacheService, notifier services.Notifier) *PublicHandler {
	linkRepo := repository.NewLinkRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	stepRepo := repository.NewStepRepository(db)
	trackingRepo := repository.NewTrackingRepository(db)

	return &PublicHandler{
		linkService:     services.NewLinkService(linkRepo, campaignRepo, channelRepo, services.NewStaticGeoResolver(), notifier),
		stepService:     services.NewStepService(stepRepo, channelRepo, campaignRepo, trackingRepo, notifier),
		campaignService: services.NewCampaignService(campaignRepo, cache),
	}
}

// HandleRedirect godoc
// @Summary Follow a short link
// @Description Register a click and redirect to the campaign page. Inactive, expired or capped links render a plain unavailable response instead.
// @Tags public
// @Produce json
// @Param short_code path string true "Short code"
// @Success 302
// @Failure 404 {object} map[string]interface{}
// @Failure 410 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /r/{short_code} [get]
func (h *PublicHandler) HandleRedirect(c *gin.Context) {
	result, err := h.linkService.RegisterClick(
		c.Param("short_code"),
		c.ClientIP(),
		c.Request.UserAgent(),
		c.Request.Referer(),
	)
	if err != nil {
		if err.Error() == "link not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process click"})
		return
	}

	if !result.Registered {
		c.JSON(http.StatusGone, gin.H{"error": result.Reason})
		return
	}

	c.Redirect(http.StatusFound, result.RedirectURL)
}

// RegisterConversion godoc
// @Summary Register a conversion
// @Description Record a conversion postback against a short link
// @Tags public
// @Accept json
// @Produce json
// @Param short_code path string true "Short code"
// @Param request body models.RegisterConversionRequest false "Conversion details"
// @Success 201 {object} models.TrackingEventResponse
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /r/{short_code}/conversions [post]
func (h *PublicHandler) RegisterConversion(c *gin.Context) {
	var req models.RegisterConversionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
			return
		}
	}

	event, err := h.linkService.RegisterConversion(
		c.Param("short_code"),
		c.ClientIP(),
		c.Request.UserAgent(),
		c.Request.Referer(),
		&req,
	)
	if err != nil {
		if err.Error() == "link not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register conversion"})
		return
	}

	c.JSON(http.StatusCreated, event.ToResponse())
}

// CompleteStep godoc
// @Summary Complete a funnel step
// @Description Submit data for a step; validation failure is reported in the body, not as an HTTP error
// @Tags public
// @Accept json
// @Produce json
// @Param id path string true "Step ID"
// @Param request body models.CompleteStepRequest true "Submitted step data"
// @Success 200 {object} models.StepCompletionResult
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/public/steps/{id}/complete [post]
func (h *PublicHandler) CompleteStep(c *gin.Context) {
	var req models.CompleteStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	result, err := h.stepService.CompleteStep(c.Param("id"), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if err.Error() == "step not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Step not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete step"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPublicCampaign godoc
// @Summary Public campaign page
// @Description Get the public projection of an active campaign by slug
// @Tags public
// @Produce json
// @Param slug path string true "Public slug"
// @Success 200 {object} models.PublicCampaignResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/public/campaigns/{slug} [get]
func (h *PublicHandler) GetPublicCampaign(c *gin.Context) {
	resp, err := h.campaignService.GetPublicCampaign(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
