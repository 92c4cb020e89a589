package handler

import (
	"net/http"

	crmapp "github.com/Replicator56/mini-crm/internal/application/crm"
	"github.com/Replicator56/mini-crm/internal/domain/crm"
	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
)

const clientsPath = "/clients"

// ClientForm is the create and edit form of a client
type ClientForm struct {
	Name  string `form:"name" binding:"required,max=200"`
	Email string `form:"email" binding:"omitempty,max=200,crm_email"`
	Phone string `form:"phone" binding:"max=50"`
	Notes string `form:"notes"`
}

func (f ClientForm) input() crm.ClientInput {
	return crm.ClientInput{Name: f.Name, Email: f.Email, Phone: f.Phone, Notes: f.Notes}
}

// ClientFormPage is the data of the client form template
type ClientFormPage struct {
	Client ClientForm
	Action string
	Method string
}

// ClientHandler handles client CRUD pages
type ClientHandler struct {
	BaseHandler
	clients     *crmapp.ClientService
	requireAuth gin.HandlerFunc
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(base BaseHandler, clients *crmapp.ClientService, requireAuth gin.HandlerFunc) *ClientHandler {
	return &ClientHandler{BaseHandler: base, clients: clients, requireAuth: requireAuth}
}

// RegisterRoutes registers the client routes, all behind RequireAuth
func (h *ClientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group(clientsPath, h.requireAuth)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/new", h.New)
	g.GET("/:id/edit", h.Edit)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List renders the clients matching ?q=
func (h *ClientHandler) List(c *gin.Context) {
	query := c.Query("q")
	clients, err := h.clients.List(c.Request.Context(), query)
	if err != nil {
		h.InternalError(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PageClientList, "Clients", gin.H{
		"Clients": clients,
		"Query":   query,
	})
}

// New renders an empty client form
func (h *ClientHandler) New(c *gin.Context) {
	h.Render(c, http.StatusOK, view.PageClientForm, "New client", ClientFormPage{Action: clientsPath})
}

// Create stores a new client
func (h *ClientHandler) Create(c *gin.Context) {
	var form ClientForm
	if err := c.ShouldBind(&form); err != nil {
		h.Redirect(c, clientsPath+"/new", errorNotice(err))
		return
	}
	if _, err := h.clients.Create(c.Request.Context(), form.input()); err != nil {
		h.HandleDomainError(c, err, clientsPath+"/new")
		return
	}
	h.Redirect(c, clientsPath, flash.Success("Client created."))
}

// Edit renders the form of an existing client
func (h *ClientHandler) Edit(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.Redirect(c, clientsPath, flash.Error(crmapp.ErrClientNotFound.Message))
		return
	}
	client, err := h.clients.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err, clientsPath)
		return
	}
	h.Render(c, http.StatusOK, view.PageClientForm, "Edit client", ClientFormPage{
		Client: ClientForm{Name: client.Name, Email: client.Email, Phone: client.Phone, Notes: client.Notes},
		Action: clientsPath + "/" + client.ID.String(),
		Method: http.MethodPut,
	})
}

// Update replaces the fields of a client
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.Redirect(c, clientsPath, flash.Error(crmapp.ErrClientNotFound.Message))
		return
	}
	editPath := clientsPath + "/" + id.String() + "/edit"

	var form ClientForm
	if err := c.ShouldBind(&form); err != nil {
		h.Redirect(c, editPath, errorNotice(err))
		return
	}
	if _, err := h.clients.Update(c.Request.Context(), id, form.input()); err != nil {
		if shared.IsCode(err, shared.CodeNotFound) {
			h.Redirect(c, clientsPath, flash.Error(err.Error()))
			return
		}
		h.HandleDomainError(c, err, editPath)
		return
	}
	h.Redirect(c, clientsPath, flash.Success("Client updated."))
}

// Delete removes a client and its appointment links
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.Redirect(c, clientsPath, flash.Error(crmapp.ErrClientNotFound.Message))
		return
	}
	if err := h.clients.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err, clientsPath)
		return
	}
	h.Redirect(c, clientsPath, flash.Success("Client deleted."))
}
