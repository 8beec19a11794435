// Error journal endpoints.
//
// This file exposes the admin API over the error journal:
//   - GET    /errors   (list handled errors, paginated, most recent first)
//   - DELETE /errors   (prune entries older than a cutoff)
//
// Handlers are transport-thin: they validate input, call the journal store,
// and either write a success envelope or record an error for the boundary.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-error-responder/internal/domain"
	"github.com/tbourn/go-error-responder/internal/httperr"
	"github.com/tbourn/go-error-responder/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// JournalStore defines the journal operations consumed by the admin API.
//
// Implementations must be safe for concurrent use and must honor the provided
// context for cancellation.
type JournalStore interface {
	// Count returns the total number of journal rows.
	Count(ctx context.Context) (int64, error)
	// ListPage returns a page of rows, most recent first.
	ListPage(ctx context.Context, offset, limit int) ([]domain.ErrorEvent, error)
	// PruneBefore removes rows created before cutoff and reports the count.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Handlers groups the admin API endpoints over the journal store.
type Handlers struct {
	store JournalStore
}

// New constructs a Handlers instance bound to the given store.
func New(store JournalStore) *Handlers {
	return &Handlers{store: store}
}

// ListEvents serves GET /errors.
//
// Query parameters:
//   - page:      1-based page number (default 1)
//   - page_size: rows per page (default 20, max 100)
func (h *Handlers) ListEvents(c *gin.Context) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	size := utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if page < 1 || size < 1 {
		c.Error(httperr.NewHTTPError(http.StatusBadRequest, "page and page_size must be positive"))
		return
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	ctx := c.Request.Context()
	total, err := h.store.Count(ctx)
	if err != nil {
		c.Error(httperr.NewHTTPError(http.StatusInternalServerError, "could not count journal rows").Wrap(err))
		return
	}
	items, err := h.store.ListPage(ctx, (page-1)*size, size)
	if err != nil {
		c.Error(httperr.NewHTTPError(http.StatusInternalServerError, "could not list journal rows").Wrap(err))
		return
	}

	ok(c, http.StatusOK, PageResponse{
		Page:     page,
		PageSize: size,
		Total:    total,
		Items:    items,
	})
}

// PruneEvents serves DELETE /errors.
//
// Query parameters:
//   - older_than: Go duration (e.g. "168h"); rows created before now-older_than
//     are removed. Required.
func (h *Handlers) PruneEvents(c *gin.Context) {
	raw := c.Query("older_than")
	if raw == "" {
		c.Error(httperr.NewHTTPError(http.StatusBadRequest, "older_than is required"))
		return
	}
	age, err := time.ParseDuration(raw)
	if err != nil || age <= 0 {
		c.Error(httperr.NewHTTPError(http.StatusBadRequest, "older_than must be a positive duration"))
		return
	}

	n, err := h.store.PruneBefore(c.Request.Context(), time.Now().UTC().Add(-age))
	if err != nil {
		c.Error(httperr.NewHTTPError(http.StatusInternalServerError, "prune failed").Wrap(err))
		return
	}
	ok(c, http.StatusOK, gin.H{"pruned": n})
}

// Health serves GET /health.
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"status": "ok"})
}
