package handler

import (
	"net/http"

	identityapp "github.com/Replicator56/mini-crm/internal/application/identity"
	"github.com/Replicator56/mini-crm/internal/infrastructure/session"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/middleware"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
)

// Notices shown after a successful registration or login
const (
	MsgRegistered = "Registration successful."
	MsgLoggedIn   = "Logged in successfully."
)

// LoginForm is the login form
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// RegisterForm is the registration form
type RegisterForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	BaseHandler
	auth      *identityapp.AuthService
	sessions  *session.Manager
	rateLimit gin.HandlerFunc
}

// NewAuthHandler creates a new AuthHandler. rateLimit guards the login and
// registration routes, pages and submissions alike.
func NewAuthHandler(base BaseHandler, auth *identityapp.AuthService, sessions *session.Manager, rateLimit gin.HandlerFunc) *AuthHandler {
	if rateLimit == nil {
		rateLimit = func(c *gin.Context) { c.Next() }
	}
	return &AuthHandler{BaseHandler: base, auth: auth, sessions: sessions, rateLimit: rateLimit}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/register", h.rateLimit, h.ShowRegister)
	rg.POST("/register", h.rateLimit, h.Register)
	rg.GET("/login", h.rateLimit, h.ShowLogin)
	rg.POST("/login", h.rateLimit, h.Login)
	rg.POST("/logout", h.Logout)
}

// ShowRegister renders the registration form
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.Render(c, http.StatusOK, view.PageRegister, "Register", nil)
}

// Register creates an account and logs it in
func (h *AuthHandler) Register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.Redirect(c, "/register", errorNotice(err))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), identityapp.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		h.HandleDomainError(c, err, "/register")
		return
	}
	h.startSession(c, user, MsgRegistered)
}

// ShowLogin renders the login form
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.Render(c, http.StatusOK, view.PageLogin, "Log in", nil)
}

// Login verifies the credentials and rotates the session
func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.Redirect(c, middleware.LoginPath, errorNotice(err))
		return
	}

	user, err := h.auth.Login(c.Request.Context(), identityapp.LoginInput{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		h.HandleDomainError(c, err, middleware.LoginPath)
		return
	}
	h.startSession(c, user, MsgLoggedIn)
}

// Logout destroys the session whatever its state
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c.Request.Context(), middleware.CurrentSession(c)); err != nil {
		h.InternalError(c, err)
		return
	}
	h.sessions.ClearCookie(c.Writer)
	h.SeeOther(c, "/")
}

func (h *AuthHandler) startSession(c *gin.Context, user *identityapp.UserInfo, welcome string) {
	s, err := h.sessions.Login(c.Request.Context(), middleware.CurrentSession(c), session.Principal{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	})
	if err != nil {
		h.InternalError(c, err)
		return
	}
	if err := h.sessions.WriteCookie(c.Writer, s); err != nil {
		h.InternalError(c, err)
		return
	}
	h.Redirect(c, "/clients", flash.Success(welcome))
}
