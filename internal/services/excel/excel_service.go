package excel

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// AnalyticsProvider supplies the aggregation an export is built from.
type AnalyticsProvider interface {
	GetCampaignAnalytics(userID, campaignID string, from, to *time.Time) (*models.CampaignAnalytics, error)
}

// EventLister supplies the raw event rows for the Events sheet.
type EventLister interface {
	GetByCampaignID(campaignID string, from, to time.Time) ([]*models.TrackingEvent, error)
}

// Service builds Excel workbooks from campaign analytics
type Service struct {
	analytics AnalyticsProvider
	events    EventLister
}

// NewExcelService creates a new Excel service instance
func NewExcelService(analytics AnalyticsProvider, events EventLister) *Service {
	return &Service{
		analytics: analytics,
		events:    events,
	}
}

// ExportCampaignAnalytics builds an .xlsx workbook with a Summary sheet and
// an Events sheet and returns it as a byte buffer for streaming.
func (s *Service) ExportCampaignAnalytics(userID, campaignID string, from, to *time.Time) (*bytes.Buffer, string, error) {
	analytics, err := s.analytics.GetCampaignAnalytics(userID, campaignID, from, to)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"D9E1F2"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	// Summary sheet
	summarySheet := "Summary"
	defaultSheetName := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheetName, summarySheet); err != nil {
		return nil, "", fmt.Errorf("failed to rename sheet: %w", err)
	}
	f.SetActiveSheet(0)

	summaryRows := [][]interface{}{
		{"Campaign", analytics.CampaignTitle},
		{"Period", analytics.PeriodStart + " - " + analytics.PeriodEnd},
		{"Total clicks", analytics.TotalClicks},
		{"Unique clicks", analytics.UniqueClicks},
		{"Conversions", analytics.Conversions},
		{"Bot clicks", analytics.BotClicks},
		{"Conversion rate (%)", analytics.ConversionRate},
		{"Unique rate (%)", analytics.UniqueRate},
	}
	for i, row := range summaryRows {
		rowNum := i + 1
		f.SetCellValue(summarySheet, "A"+strconv.Itoa(rowNum), row[0])
		f.SetCellValue(summarySheet, "B"+strconv.Itoa(rowNum), row[1])
	}
	f.SetCellStyle(summarySheet, "A1", "A"+strconv.Itoa(len(summaryRows)), headerStyle)
	f.SetColWidth(summarySheet, "A", "A", 24)
	f.SetColWidth(summarySheet, "B", "B", 40)

	// Daily clicks below the summary block
	dayStart := len(summaryRows) + 2
	f.SetCellValue(summarySheet, "A"+strconv.Itoa(dayStart), "Date")
	f.SetCellValue(summarySheet, "B"+strconv.Itoa(dayStart), "Clicks")
	f.SetCellStyle(summarySheet, "A"+strconv.Itoa(dayStart), "B"+strconv.Itoa(dayStart), headerStyle)
	for i, p := range analytics.ClicksByDay {
		rowNum := dayStart + 1 + i
		f.SetCellValue(summarySheet, "A"+strconv.Itoa(rowNum), p.Date)
		f.SetCellValue(summarySheet, "B"+strconv.Itoa(rowNum), p.Value)
	}

	// Events sheet
	if err := s.writeEventsSheet(f, analytics, headerStyle); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("campaign_%s_%d.xlsx", analytics.CampaignID, time.Now().Unix())
	return buf, filename, nil
}

func (s *Service) writeEventsSheet(f *excelize.File, analytics *models.CampaignAnalytics, headerStyle int) error {
	eventSheet := "Events"
	if _, err := f.NewSheet(eventSheet); err != nil {
		return fmt.Errorf("failed to create events sheet: %w", err)
	}

	columns := []string{
		"id", "event_type", "browser", "os", "device_type",
		"country", "city", "referer", "is_unique", "is_conversion", "is_bot", "created_at",
	}
	for i, col := range columns {
		cell := fmt.Sprintf("%s1", columnToLetter(i+1))
		f.SetCellValue(eventSheet, cell, col)
	}
	f.SetCellStyle(eventSheet, "A1", columnToLetter(len(columns))+"1", headerStyle)

	from, _ := time.Parse("2006-01-02", analytics.PeriodStart)
	to, _ := time.Parse("2006-01-02", analytics.PeriodEnd)
	events, err := s.events.GetByCampaignID(analytics.CampaignID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	for i, e := range events {
		rowNum := i + 2
		values := []interface{}{
			e.ID, e.EventType, e.Browser, e.OS, e.DeviceType,
			e.Country, e.City, e.Referer, e.IsUnique, e.IsConversion, e.IsBot,
			e.CreatedAt.Format(time.RFC3339),
		}
		for j, v := range values {
			cell := fmt.Sprintf("%s%d", columnToLetter(j+1), rowNum)
			f.SetCellValue(eventSheet, cell, v)
		}
	}
	return nil
}

// columnToLetter converts a 1-based column index to its Excel letter
func columnToLetter(col int) string {
	letter := ""
	for col > 0 {
		col--
		letter = string(rune('A'+col%26)) + letter
		col /= 26
	}
	return letter
}
