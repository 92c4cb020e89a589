package handler

import (
	"net/http"

	crmapp "github.com/Replicator56/mini-crm/internal/application/crm"
	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/middleware"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
)

const appointmentsPath = middleware.AppointmentsPath

// AppointmentForm is the create and edit form of an appointment.
// ClientID is the legacy single-select field.
type AppointmentForm struct {
	Date      string   `form:"date"`
	Time      string   `form:"time"`
	Notes     string   `form:"notes"`
	ClientIDs []string `form:"clientIds"`
	ClientID  []string `form:"clientId"`
}

func (f AppointmentForm) input() crmapp.AppointmentInput {
	ids := make([]string, 0, len(f.ClientIDs)+len(f.ClientID))
	ids = append(ids, f.ClientIDs...)
	ids = append(ids, f.ClientID...)
	return crmapp.AppointmentInput{Date: f.Date, Time: f.Time, Notes: f.Notes, ClientIDs: ids}
}

// AppointmentFormPage is the data of the appointment form template
type AppointmentFormPage struct {
	Date     string
	Time     string
	Notes    string
	Selected map[string]bool
	Clients  []*crm.Client
	Action   string
	Method   string
}

// AppointmentHandler handles appointment CRUD pages
type AppointmentHandler struct {
	BaseHandler
	appointments *crmapp.AppointmentService
	clients      *crmapp.ClientService
	guards       *middleware.Guards
}

// NewAppointmentHandler creates a new AppointmentHandler
func NewAppointmentHandler(
	base BaseHandler,
	appointments *crmapp.AppointmentService,
	clients *crmapp.ClientService,
	guards *middleware.Guards,
) *AppointmentHandler {
	return &AppointmentHandler{BaseHandler: base, appointments: appointments, clients: clients, guards: guards}
}

// RegisterRoutes registers the appointment routes. Edit, update and delete
// run only for the owner.
func (h *AppointmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group(appointmentsPath, h.guards.RequireAuth())
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/new", h.New)
	g.GET("/:id/edit", h.guards.AppointmentOwner(h.appointments, h.Edit))
	g.PUT("/:id", h.guards.AppointmentOwner(h.appointments, h.Update))
	g.PATCH("/:id", h.guards.AppointmentOwner(h.appointments, h.Update))
	g.DELETE("/:id", h.guards.AppointmentOwner(h.appointments, h.Delete))
}

// List renders every appointment by datetime
func (h *AppointmentHandler) List(c *gin.Context) {
	appointments, err := h.appointments.List(c.Request.Context())
	if err != nil {
		h.InternalError(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PageAppointmentList, "Appointments", gin.H{"Appointments": appointments})
}

// New renders an empty appointment form
func (h *AppointmentHandler) New(c *gin.Context) {
	h.renderForm(c, "New appointment", AppointmentFormPage{Action: appointmentsPath})
}

// Create books an appointment owned by the current user
func (h *AppointmentHandler) Create(c *gin.Context) {
	var form AppointmentForm
	if err := c.ShouldBind(&form); err != nil {
		h.Redirect(c, appointmentsPath+"/new", errorNotice(err))
		return
	}
	user := middleware.CurrentUser(c)
	if _, err := h.appointments.Create(c.Request.Context(), user.UserID, form.input()); err != nil {
		h.HandleDomainError(c, err, appointmentsPath+"/new")
		return
	}
	h.Redirect(c, appointmentsPath, flash.Success("Appointment created."))
}

// Edit renders the form of an owned appointment
func (h *AppointmentHandler) Edit(c *gin.Context, authorized middleware.AuthorizedAppointment) {
	a := authorized.Appointment
	date, clock := crm.SplitDateTime(a.ScheduledAt, h.appointments.Location())

	selected := make(map[string]bool, len(a.ClientIDs))
	for _, id := range a.ClientIDs {
		selected[id.String()] = true
	}
	h.renderForm(c, "Edit appointment", AppointmentFormPage{
		Date:     date,
		Time:     clock,
		Notes:    a.Notes,
		Selected: selected,
		Action:   appointmentsPath + "/" + a.ID.String(),
		Method:   http.MethodPut,
	})
}

// Update reschedules an owned appointment
func (h *AppointmentHandler) Update(c *gin.Context, authorized middleware.AuthorizedAppointment) {
	editPath := appointmentsPath + "/" + authorized.Appointment.ID.String() + "/edit"

	var form AppointmentForm
	if err := c.ShouldBind(&form); err != nil {
		h.Redirect(c, editPath, errorNotice(err))
		return
	}
	if err := h.appointments.Update(c.Request.Context(), authorized.Appointment, form.input()); err != nil {
		if shared.IsCode(err, shared.CodeNotFound) {
			h.Redirect(c, appointmentsPath, flash.Error(err.Error()))
			return
		}
		h.HandleDomainError(c, err, editPath)
		return
	}
	h.Redirect(c, appointmentsPath, flash.Success("Appointment updated."))
}

// Delete removes an owned appointment
func (h *AppointmentHandler) Delete(c *gin.Context, authorized middleware.AuthorizedAppointment) {
	if err := h.appointments.Delete(c.Request.Context(), authorized.Appointment); err != nil {
		h.HandleDomainError(c, err, appointmentsPath)
		return
	}
	h.Redirect(c, appointmentsPath, flash.Success("Appointment deleted."))
}

// renderForm loads the client picker, ordered by name
func (h *AppointmentHandler) renderForm(c *gin.Context, title string, page AppointmentFormPage) {
	clients, err := h.clients.List(c.Request.Context(), "")
	if err != nil {
		h.InternalError(c, err)
		return
	}
	if page.Selected == nil {
		page.Selected = map[string]bool{}
	}
	page.Clients = clients
	h.Render(c, http.StatusOK, view.PageAppointmentForm, title, page)
}
