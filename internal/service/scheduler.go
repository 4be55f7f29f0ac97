package service

import (
	"sync"
	"time"

	"cinescope/internal/logging"
)

// Backupper is the part of BackupService the scheduler needs.
type Backupper interface {
	Backup() (string, error)
}

// Scheduler runs periodic backups.
type Scheduler struct {
	backups  Backupper
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler creates a new Scheduler. A non-positive interval disables it.
func NewScheduler(backups Backupper, interval time.Duration) *Scheduler {
	return &Scheduler{
		backups:  backups,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start launches the backup loop in the background.
func (s *Scheduler) Start() {
	if s.interval <= 0 {
		logging.Info().Msg("scheduled backups disabled")
		return
	}
	s.wg.Add(1)
	go s.runBackupScheduler()
	logging.Info().Dur("interval", s.interval).Msg("scheduler started")
}

// Stop ends the loop and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

func (s *Scheduler) runBackupScheduler() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			path, err := s.backups.Backup()
			if err != nil {
				logging.Error().Err(err).Msg("scheduled backup failed")
				continue
			}
			logging.Info().Str("path", path).Msg("scheduled backup created")
		case <-s.stopChan:
			return
		}
	}
}
