package handler

import (
	"net/http"

	"github.com/Replicator56/mini-crm/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
)

// PageHandler serves the landing page and the error pages
type PageHandler struct {
	BaseHandler
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(base BaseHandler) *PageHandler {
	return &PageHandler{BaseHandler: base}
}

// RegisterRoutes registers the landing page
func (h *PageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Home)
}

// Home renders the landing page
func (h *PageHandler) Home(c *gin.Context) {
	h.Render(c, http.StatusOK, view.PageIndex, "", nil)
}

// NotFound renders the 404 page
func (h *PageHandler) NotFound(c *gin.Context) {
	h.Render(c, http.StatusNotFound, view.PageNotFound, "Not found", nil)
}

// TooManyRequests renders the 429 page
func (h *PageHandler) TooManyRequests(c *gin.Context) {
	h.Render(c, http.StatusTooManyRequests, view.PageTooManyRequests, "Too many requests", nil)
}

// ServerError renders the 500 page. Used by recovery and the guards, which
// log on their own.
func (h *PageHandler) ServerError(c *gin.Context) {
	h.Render(c, http.StatusInternalServerError, view.PageInternalError, "Error", nil)
}
