package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/handlers"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/logging"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/match"
)

// QueueReporter is implemented by recorders that buffer writes.
type QueueReporter interface {
	QueueLengths() (ticks, warnings int)
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager   *logging.SlogManager
	MatchContext *match.Context
	Stats        func() handlers.Stats
	Queues       QueueReporter // optional
	StatusDir    string
	Interval     time.Duration
	Now          func() time.Time
}

// Status is one snapshot of the running session.
type Status struct {
	Time           time.Time `json:"time"`
	MatchID        string    `json:"matchId,omitempty"`
	MatchName      string    `json:"matchName,omitempty"`
	Tick           int       `json:"tick"`
	Ticks          int64     `json:"ticks"`
	Skipped        int64     `json:"skipped"`
	Warnings       int64     `json:"warnings"`
	LastDecisionUs int64     `json:"lastDecisionUs"`
	QueuedTicks    int       `json:"queuedTicks"`
	QueuedWarnings int       `json:"queuedWarnings"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// StatusPath is where Start writes the status file.
func (s *Service) StatusPath() string {
	return filepath.Join(s.deps.StatusDir, "status.json")
}

// GetStatus collects the current session status.
func (s *Service) GetStatus() Status {
	st := Status{Time: s.deps.Now().UTC(), Tick: -1}

	if s.deps.MatchContext != nil {
		if m := s.deps.MatchContext.GetMatch(); m != nil {
			st.MatchID = m.ID
			st.MatchName = m.Name()
		}
		st.Tick = s.deps.MatchContext.Tick()
	}
	if s.deps.Stats != nil {
		stats := s.deps.Stats()
		st.Ticks = stats.Ticks
		st.Skipped = stats.Skipped
		st.Warnings = stats.Warnings
		st.LastDecisionUs = stats.LastDecision.Microseconds()
	}
	if s.deps.Queues != nil {
		st.QueuedTicks, st.QueuedWarnings = s.deps.Queues.QueueLengths()
	}
	return st
}

// WriteStatus overwrites the status file with the current status.
func (s *Service) WriteStatus() error {
	data, err := json.MarshalIndent(s.GetStatus(), "", "  ")
	if err != nil {
		return err
	}
	tmp := s.StatusPath() + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return os.Rename(tmp, s.StatusPath())
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(s.deps.StatusDir, 0755); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("create status dir: %w", err)
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)

		s.writeLog("Starting status monitor", "DEBUG")

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				if err := s.WriteStatus(); err != nil {
					s.writeLog(fmt.Sprintf("Error writing final status: %v", err), "ERROR")
				}
				return
			case <-ticker.C:
				if err := s.WriteStatus(); err != nil {
					s.writeLog(fmt.Sprintf("Error writing status file: %v", err), "ERROR")
				}
			}
		}
	}()

	return nil
}

// Stop writes a last status and waits for the monitor goroutine to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *Service) writeLog(data, level string) {
	if s.deps.LogManager != nil {
		s.deps.LogManager.WriteLog("statusMonitor", data, level)
	}
}
