package handler

import (
	"net/http"

	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/Replicator56/mini-crm/internal/infrastructure/logger"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/middleware"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	notices *flash.Store
	logger  *zap.Logger
}

// NewBaseHandler creates the shared handler base
func NewBaseHandler(notices *flash.Store, logger *zap.Logger) BaseHandler {
	return BaseHandler{notices: notices, logger: logger}
}

// Render executes page with the template locals: current user, pending
// notice, CSRF token, path and title.
func (h *BaseHandler) Render(c *gin.Context, status int, page, title string, data any) {
	locals := view.Page{
		Title: title,
		Path:  c.Request.URL.Path,
		Data:  data,
	}
	if s := middleware.CurrentSession(c); s != nil {
		locals.User = s.User
		locals.CSRFToken = s.CSRFToken
	}
	if h.notices != nil {
		locals.Notice = h.notices.Take(c.Writer, c.Request)
	}
	c.HTML(status, page, locals)
}

// Redirect answers 303 to location with a notice
func (h *BaseHandler) Redirect(c *gin.Context, location string, n flash.Notice) {
	h.notices.Redirect(c, location, n)
}

// SeeOther answers 303 to location without a notice
func (h *BaseHandler) SeeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// HandleDomainError sends domain errors back to location with their message
// as an error notice. Anything else is logged and renders the 500 page.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error, location string) {
	if shared.CodeOf(err) != "" {
		h.Redirect(c, location, flash.Error(err.Error()))
		return
	}
	h.InternalError(c, err)
}

// InternalError logs err and renders the generic error page
func (h *BaseHandler) InternalError(c *gin.Context, err error) {
	logger.ForContext(c.Request.Context(), h.logger).Error("Request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	h.Render(c, http.StatusInternalServerError, view.PageInternalError, "Error", nil)
	c.Abort()
}
