package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinorefs/dinorefs-backend/internal/database/repository"
	"github.com/dinorefs/dinorefs-backend/internal/services"
	"github.com/dinorefs/dinorefs-backend/internal/services/excel"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	forecastService  *services.ForecastService
	excelService     *excel.Service
}

func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	trackingRepo := repository.NewTrackingRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	channelRepo := repository.NewChannelRepository(db)

	analyticsService := services.NewAnalyticsService(trackingRepo, campaignRepo, campaignRepo, linkRepo, channelRepo)

	return &AnalyticsHandler{
		analyticsService: analyticsService,
		forecastService:  services.NewForecastService(trackingRepo, campaignRepo, services.NewLinearForecaster()),
		excelService:     excel.NewExcelService(analyticsService, trackingRepo),
	}
}

// parseDateRange reads optional from/to query params in YYYY-MM-DD form.
func parseDateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from date: %s", v)
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to date: %s", v)
		}
		to = &t
	}
	return from, to, nil
}

// GetCampaignAnalytics godoc
// @Summary Campaign analytics
// @Description Aggregate a campaign's tracking stream over a date range (default last 30 days)
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} models.CampaignAnalytics
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/analytics [get]
func (h *AnalyticsHandler) GetCampaignAnalytics(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analytics, err := h.analyticsService.GetCampaignAnalytics(userID, c.Param("id"), from, to)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analytics", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// GetLinkAnalytics godoc
// @Summary Link analytics
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param link_id path string true "Link ID"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} models.LinkAnalytics
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/links/{link_id}/analytics [get]
func (h *AnalyticsHandler) GetLinkAnalytics(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analytics, err := h.analyticsService.GetLinkAnalytics(userID, c.Param("id"), c.Param("link_id"), from, to)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get link analytics", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// GetDashboard godoc
// @Summary Owner dashboard
// @Description Totals and top campaigns across the authenticated user's account
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardResponse
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/dashboard [get]
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	dashboard, err := h.analyticsService.GetDashboard(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get dashboard", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// ForecastCampaign godoc
// @Summary Forecast campaign clicks
// @Description Linear projection of daily clicks; short history yields an unavailable result, not an error
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param horizon query int false "Days to project (default 30)"
// @Success 200 {object} models.ForecastResult
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/forecast [get]
func (h *AnalyticsHandler) ForecastCampaign(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	horizon := 0
	if v := c.Query("horizon"); v != "" {
		horizon, _ = strconv.Atoi(v)
	}

	result, err := h.forecastService.ForecastCampaignClicks(userID, c.Param("id"), horizon)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build forecast", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportCampaign godoc
// @Summary Export campaign analytics
// @Description Stream the campaign's analytics and events as an .xlsx workbook
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/referrals/campaigns/{id}/export [get]
func (h *AnalyticsHandler) ExportCampaign(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	from, to, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buf, filename, err := h.excelService.ExportCampaignAnalytics(userID, c.Param("id"), from, to)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export analytics", "details": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
