// Package repo implements the persistence layer for the error journal,
// backed by GORM. This file provides repository functions for ErrorEvent rows.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an event is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-error-responder/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateEvent inserts one journal row for a handled error. The event ID is a
// randomly generated UUID and CreatedAt is set to UTC.
func CreateEvent(ctx context.Context, db *gorm.DB, ev *domain.ErrorEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(ev).Error
}

// GetEvent fetches a single event by ID, or ErrNotFound if missing.
func GetEvent(ctx context.Context, db *gorm.DB, id string) (*domain.ErrorEvent, error) {
	var ev domain.ErrorEvent
	err := db.WithContext(ctx).Where("id = ?", id).First(&ev).Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// CountEvents returns the total number of journal rows.
func CountEvents(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.ErrorEvent{}).Count(&n).Error
	return n, err
}

// ListEventsPage returns a page of events ordered by creation time descending
// (most recent failures first).
func ListEventsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ErrorEvent, error) {
	var out []domain.ErrorEvent
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// PruneEventsBefore soft-deletes all events created strictly before cutoff and
// reports how many rows were affected.
func PruneEventsBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&domain.ErrorEvent{})
	return res.RowsAffected, res.Error
}
