package auth

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/dinorefs/dinorefs-backend/internal/database/repository"
)

// StaleSessionStore removes refresh tokens that can no longer be redeemed.
type StaleSessionStore interface {
	PruneStale() (int64, error)
}

// SessionPruner periodically deletes expired and revoked refresh tokens so
// dead sessions do not pile up in the table. Revocation itself happens at
// logout and rotation time; the pruner only reclaims the rows.
type SessionPruner struct {
	sessions StaleSessionStore
	interval time.Duration
	stopChan chan bool
}

func NewSessionPruner(db *gorm.DB) *SessionPruner {
	return &SessionPruner{
		sessions: repository.NewRefreshTokenRepository(db),
		interval: 24 * time.Hour,
		stopChan: make(chan bool),
	}
}

// Start starts the session pruner
func (s *SessionPruner) Start() {
	go s.run()
	logrus.Info("Session pruner started")
}

// Stop stops the session pruner
func (s *SessionPruner) Stop() {
	s.stopChan <- true
	logrus.Info("Session pruner stopped")
}

func (s *SessionPruner) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Prune on startup so a long-stopped server catches up immediately
	s.prune()

	for {
		select {
		case <-ticker.C:
			s.prune()
		case <-s.stopChan:
			return
		}
	}
}

func (s *SessionPruner) prune() {
	pruned, err := s.sessions.PruneStale()
	if err != nil {
		logrus.Errorf("Failed to prune stale sessions: %v", err)
		return
	}
	if pruned > 0 {
		logrus.Infof("Pruned %d stale refresh tokens", pruned)
	}
}

// SetInterval sets the prune interval
func (s *SessionPruner) SetInterval(interval time.Duration) {
	s.interval = interval
}
