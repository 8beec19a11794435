// Package domain defines the persistence model for the error journal.
// Every error handled by the terminal boundary is recorded as one
// ErrorEvent row, mapped with GORM.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// ErrorEvent is one handled error, as seen by the terminal error boundary.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - RequestID: correlation ID propagated via X-Request-ID; indexed so an
//     operator can jump from a client report straight to the row.
//   - Method / Path: the failing request line.
//   - Status: the resolved response status code (indexed for dashboards).
//   - ContentType: the negotiated representation served to the client.
//   - Message: the client-safe headline of the error.
//   - Detail: full diagnostic rendering (cause chain); never returned to
//     clients unless detail display is enabled.
//   - CreatedAt: insertion timestamp (indexed, drives pruning).
//   - DeletedAt: soft deletion marker.
type ErrorEvent struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	RequestID   string         `json:"request_id"   gorm:"type:varchar(64);index:idx_event_request"`
	Method      string         `json:"method"       gorm:"type:varchar(16);not null"`
	Path        string         `json:"path"         gorm:"type:varchar(512);not null"`
	Status      int            `json:"status"       gorm:"not null;index:idx_event_status"`
	ContentType string         `json:"content_type" gorm:"type:varchar(64);not null"`
	Message     string         `json:"message"      gorm:"type:text"`
	Detail      string         `json:"-"            gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"   gorm:"index:idx_event_created"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`
}

// TableName returns the database table name for ErrorEvent.
func (ErrorEvent) TableName() string { return "error_events" }
