package middleware

import (
	"context"

	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/Replicator56/mini-crm/internal/infrastructure/session"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Guard messages and redirect targets
const (
	MsgLoginRequired = "Please log in."
	LoginPath        = "/login"
	AppointmentsPath = "/appointments"
)

// AppointmentAuthorizer loads an appointment on behalf of a user and fails
// with a NotFound or Forbidden domain error.
type AppointmentAuthorizer interface {
	Authorize(ctx context.Context, userID, appointmentID uuid.UUID) (*crm.Appointment, error)
}

// AuthorizedAppointment is what AppointmentOwner hands to its handler
type AuthorizedAppointment struct {
	Principal   session.Principal
	Appointment *crm.Appointment
}

// AppointmentHandler is a handler that runs only for the appointment owner
type AppointmentHandler func(c *gin.Context, authorized AuthorizedAppointment)

// Guards builds the authorization middleware
type Guards struct {
	notices *flash.Store
	onError gin.HandlerFunc
}

// NewGuards creates the guards. onError renders unexpected failures.
func NewGuards(notices *flash.Store, onError gin.HandlerFunc) *Guards {
	return &Guards{notices: notices, onError: onError}
}

// RequireAuth redirects anonymous requests to the login form
func (g *Guards) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			g.notices.Redirect(c, LoginPath, flash.Error(MsgLoginRequired))
			return
		}
		c.Next()
	}
}

// AppointmentOwner runs next with the appointment named by :id once the
// current user is proven to own it.
func (g *Guards) AppointmentOwner(authorizer AppointmentAuthorizer, next AppointmentHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			g.notices.Redirect(c, LoginPath, flash.Error(MsgLoginRequired))
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			g.deny(c, shared.NewNotFoundError("Appointment not found."))
			return
		}
		appointment, err := authorizer.Authorize(c.Request.Context(), user.UserID, id)
		if err != nil {
			g.deny(c, err)
			return
		}

		next(c, AuthorizedAppointment{Principal: *user, Appointment: appointment})
	}
}

func (g *Guards) deny(c *gin.Context, err error) {
	switch shared.CodeOf(err) {
	case shared.CodeNotFound, shared.CodeForbidden:
		g.notices.Redirect(c, AppointmentsPath, flash.Error(err.Error()))
	default:
		_ = c.Error(err)
		if g.onError != nil {
			g.onError(c)
		}
		c.Abort()
	}
}
