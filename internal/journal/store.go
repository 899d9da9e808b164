// Package journal keeps a diagnostic record of what the host pushed to each
// surface. Nothing in it is ever read back into the UI.
package journal

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const MaxRecent = 500

type Entry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Surface    string    `gorm:"size:64;index:idx_journal_surface_time,priority:1" json:"surface"`
	Action     string    `gorm:"size:64" json:"action"`
	Outcome    string    `gorm:"size:16" json:"outcome"`
	Payload    string    `gorm:"type:text" json:"payload"`
	ReceivedAt time.Time `gorm:"index:idx_journal_surface_time,priority:2" json:"receivedAt"`
}

func (Entry) TableName() string { return "journal_entries" }

// Sink is where the writer flushes batches.
type Sink interface {
	Insert(ctx context.Context, entries []Entry) error
}

type Reader interface {
	Recent(ctx context.Context, surface string, limit int) ([]Entry, error)
}

type Store struct {
	db *gorm.DB
}

// Open connects to postgres and migrates the journal table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return NewStore(db)
}

func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Insert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(entries, 100).Error
}

// Recent returns the newest entries for surface, newest first.
func (s *Store) Recent(ctx context.Context, surface string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}
	var out []Entry
	err := s.db.WithContext(ctx).
		Where("surface = ?", surface).
		Order("received_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("recent entries: %w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
