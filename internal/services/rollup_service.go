package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

// MetricStore persists rollup snapshots.
type MetricStore interface {
	Upsert(snapshot *models.MetricSnapshot) error
	GetSeries(metricName string, campaignID *string, from, to time.Time) ([]*models.MetricSnapshot, error)
}

// RollupCountStore is the counting surface the rollup reads from.
type RollupCountStore interface {
	CountEventsBetween(campaignID *string, since, until time.Time) (int64, error)
	CountDistinctVisitorsBetween(campaignID *string, since, until time.Time) (int64, error)
	CountTypeBetween(campaignID *string, eventType string, since, until time.Time) (int64, error)
}

// RegistrationCounter counts new rows for the global rollup metrics.
type RegistrationCounter interface {
	CountRegisteredSince(since, until time.Time) (int64, error)
}

// CampaignLister enumerates campaigns for the per-campaign rollup scope.
type CampaignLister interface {
	GetAllActive() ([]*models.Campaign, error)
	CountCreatedBetween(since, until time.Time) (int64, error)
}

// RollupService recomputes the previous day's metric snapshots on a daily
// ticker. Upserts make the job idempotent: re-running a day overwrites.
type RollupService struct {
	metricRepo   MetricStore
	trackingRepo RollupCountStore
	campaignRepo CampaignLister
	userRepo     RegistrationCounter
	interval     time.Duration
	stopChan     chan bool
}

func NewRollupService(metricRepo MetricStore, trackingRepo RollupCountStore, campaignRepo CampaignLister, userRepo RegistrationCounter) *RollupService {
	return &RollupService{
		metricRepo:   metricRepo,
		trackingRepo: trackingRepo,
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		interval:     24 * time.Hour,
		stopChan:     make(chan bool),
	}
}

// Start starts the rollup service
func (s *RollupService) Start() {
	go s.run()
	logrus.Info("Metrics rollup service started")
}

// Stop stops the rollup service
func (s *RollupService) Stop() {
	s.stopChan <- true
	logrus.Info("Metrics rollup service stopped")
}

func (s *RollupService) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Roll up yesterday on startup so a restart never leaves a gap
	s.RollupDay(time.Now().AddDate(0, 0, -1))

	for {
		select {
		case <-ticker.C:
			s.RollupDay(time.Now().AddDate(0, 0, -1))
		case <-s.stopChan:
			return
		}
	}
}

// RollupDay recomputes every snapshot for the given calendar day
func (s *RollupService) RollupDay(day time.Time) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	logrus.Infof("Rolling up metrics for %s", dayStart.Format("2006-01-02"))

	s.rollupGlobal(dayStart, dayEnd)

	campaigns, err := s.campaignRepo.GetAllActive()
	if err != nil {
		logrus.Errorf("Rollup: failed to list campaigns: %v", err)
		return
	}
	for _, c := range campaigns {
		s.rollupCampaign(c.ID, dayStart, dayEnd)
	}

	logrus.Infof("Rollup for %s completed (%d campaigns)", dayStart.Format("2006-01-02"), len(campaigns))
}

func (s *RollupService) rollupGlobal(dayStart, dayEnd time.Time) {
	totalEvents, err := s.trackingRepo.CountEventsBetween(nil, dayStart, dayEnd)
	if err != nil {
		logrus.Errorf("Rollup: total events count failed: %v", err)
		return
	}
	visitors, err := s.trackingRepo.CountDistinctVisitorsBetween(nil, dayStart, dayEnd)
	if err != nil {
		logrus.Errorf("Rollup: visitors count failed: %v", err)
		return
	}
	newUsers, err := s.userRepo.CountRegisteredSince(dayStart, dayEnd)
	if err != nil {
		logrus.Errorf("Rollup: new users count failed: %v", err)
		return
	}
	newCampaigns, err := s.campaignRepo.CountCreatedBetween(dayStart, dayEnd)
	if err != nil {
		logrus.Errorf("Rollup: new campaigns count failed: %v", err)
		return
	}

	s.upsert(models.MetricTotalEvents, nil, dayStart, float64(totalEvents))
	s.upsert(models.MetricUniqueVisitors, nil, dayStart, float64(visitors))
	s.upsert(models.MetricNewUsers, nil, dayStart, float64(newUsers))
	s.upsert(models.MetricNewCampaigns, nil, dayStart, float64(newCampaigns))
}

func (s *RollupService) rollupCampaign(campaignID string, dayStart, dayEnd time.Time) {
	clicks, err := s.trackingRepo.CountTypeBetween(&campaignID, models.EventTypeClick, dayStart, dayEnd)
	if err != nil {
		logrus.Errorf("Rollup: clicks count failed for %s: %v", campaignID, err)
		return
	}
	visitors, err := s.trackingRepo.CountDistinctVisitorsBetween(&campaignID, dayStart, dayEnd)
	if err != nil {
		logrus.Errorf("Rollup: visitors count failed for %s: %v", campaignID, err)
		return
	}
	conversions, err := s.trackingRepo.CountTypeBetween(&campaignID, models.EventTypeConversion, dayStart, dayEnd)
	if err != nil {
		logrus.Errorf("Rollup: conversions count failed for %s: %v", campaignID, err)
		return
	}

	s.upsert(models.MetricClicks, &campaignID, dayStart, float64(clicks))
	s.upsert(models.MetricUniqueVisitors, &campaignID, dayStart, float64(visitors))
	s.upsert(models.MetricConversions, &campaignID, dayStart, float64(conversions))
}

func (s *RollupService) upsert(metric string, campaignID *string, date time.Time, value float64) {
	snapshot := &models.MetricSnapshot{
		MetricName: metric,
		Period:     models.PeriodDaily,
		CampaignID: campaignID,
		Date:       date,
		Value:      value,
	}
	if err := s.metricRepo.Upsert(snapshot); err != nil {
		logrus.Errorf("Rollup: upsert %s failed: %v", metric, err)
	}
}

// SetInterval sets the rollup interval
func (s *RollupService) SetInterval(interval time.Duration) {
	s.interval = interval
}
