// Package handlers provides the HTTP handlers for the admin API: reading and
// pruning the error journal, plus liveness.
//
// Conventions:
//   - Handlers never write error responses themselves. Failures are recorded
//     with c.Error and rendered by the terminal error boundary, so the admin
//     API gets the same negotiated error surface as everything else.
//   - Success helpers below keep response shapes uniform across endpoints.
package handlers

import "github.com/gin-gonic/gin"

// PageResponse is the standard envelope for paginated listings.
type PageResponse struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	Items    any   `json:"items"`
}

// ok writes a success JSON response with the given status code.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
