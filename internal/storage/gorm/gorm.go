// Package gormstorage implements the storage.Backend interface using GORM
// with internal queues and a background DB writer goroutine. It works on
// any GORM dialect; the sqlite package wraps it for in-memory recording.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/database"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/logging"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/model"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/model/convert"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/queue"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/core"
	"github.com/google/uuid"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultWriteInterval = 2 * time.Second

var errNoMatch = errors.New("no match started")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
	// WriteInterval is how often queued rows are flushed; zero means 2s.
	WriteInterval time.Duration
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Ticks    *queue.Queue[model.Tick]
	Warnings *queue.Queue[model.Warning]
}

func newQueues() *queues {
	return &queues{
		Ticks:    queue.New[model.Tick](),
		Warnings: queue.New[model.Warning](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps   Dependencies
	queues *queues

	mu      sync.RWMutex
	matchID uuid.UUID // uuid.Nil between matches

	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.WriteInterval <= 0 {
		deps.WriteInterval = defaultWriteInterval
	}
	return &Backend{deps: deps}
}

// Init creates internal queues, runs schema migration, and starts the DB writer goroutine.
// If no DB was injected via Dependencies, it creates its own postgres connection.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})

	if b.deps.DB == nil {
		db, err := database.GetPostgresDB()
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
	}

	if err := b.setupDB(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	go b.writeLoop()
	return nil
}

// setupDB migrates tables.
func (b *Backend) setupDB() error {
	log := b.deps.LogManager
	log.WriteLog("setupDB", "Migrating schema", "INFO")
	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		log.WriteLog("setupDB", fmt.Sprintf("Failed to migrate schema: %s", err), "ERROR")
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Close stops the writer goroutine after a final flush.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	select {
	case <-b.stopChan:
		return nil
	default:
	}
	close(b.stopChan)
	<-b.done
	return nil
}

// StartMatch creates the match row and assigns a UUID when m.ID is empty.
func (b *Backend) StartMatch(m *core.Match) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	row, err := convert.CoreToMatch(*m)
	if err != nil {
		return err
	}
	if err := b.deps.DB.Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	b.mu.Lock()
	b.matchID = row.ID
	b.mu.Unlock()

	b.deps.LogManager.WriteLog("StartMatch", fmt.Sprintf("Recording match %s (%s)", row.ID, row.Name), "INFO")
	return nil
}

func (b *Backend) currentMatch() (uuid.UUID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.matchID == uuid.Nil {
		return uuid.Nil, errNoMatch
	}
	return b.matchID, nil
}

// RecordTick converts and queues a tick.
func (b *Backend) RecordTick(r *core.TickRecord) error {
	id, err := b.currentMatch()
	if err != nil {
		return err
	}
	b.queues.Ticks.Push(convert.CoreToTick(id, *r))
	return nil
}

// RecordWarning converts and queues a warning.
func (b *Backend) RecordWarning(w *core.WarningRecord) error {
	id, err := b.currentMatch()
	if err != nil {
		return err
	}
	b.queues.Warnings.Push(convert.CoreToWarning(id, *w))
	return nil
}

// EndMatch flushes the queues, stores the team results and stamps the
// match with its end time and winner.
func (b *Backend) EndMatch(end *core.GameEnd) error {
	id, err := b.currentMatch()
	if err != nil {
		return err
	}
	b.Flush()

	results := convert.CoreToTeamResults(id, *end)
	if len(results) > 0 {
		if err := b.deps.DB.Omit(clause.Associations).Create(&results).Error; err != nil {
			return fmt.Errorf("failed to create team results: %w", err)
		}
	}

	var winner string
	if w, ok := end.Winner(); ok {
		winner = w.Name
	}
	now := time.Now().UTC()
	if err := b.deps.DB.Model(&model.Match{}).Where("id = ?", id).
		Updates(map[string]any{"ended_at": now, "winner": winner}).Error; err != nil {
		return fmt.Errorf("failed to close match: %w", err)
	}

	b.mu.Lock()
	b.matchID = uuid.Nil
	b.mu.Unlock()

	b.deps.LogManager.WriteLog("EndMatch", fmt.Sprintf("Match %s recorded", id), "INFO")
	return nil
}

// Flush writes every queued row now.
func (b *Backend) Flush() {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	log := b.deps.LogManager.WriteLog
	writeQueue(b.deps.DB, b.queues.Ticks, "ticks", log)
	writeQueue(b.deps.DB, b.queues.Warnings, "warnings", log)
}

// QueueLengths reports pending rows per queue.
func (b *Backend) QueueLengths() (ticks, warnings int) {
	return b.queues.Ticks.Len(), b.queues.Warnings.Len()
}

// writeQueue writes all items from a queue to the database in a transaction.
// A failed batch goes back to the head of the queue for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string)) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.Drain()
	if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Requeue(items)
		return
	}

	tx.Commit()
}

// writeLoop periodically drains the queues into the DB until Close.
func (b *Backend) writeLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.WriteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			b.Flush()
			return
		case <-ticker.C:
			b.Flush()
		}
	}
}
