package identity

import (
	"github.com/Replicator56/mini-crm/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterInput contains the registration form fields
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput contains the login form fields
type LoginInput struct {
	Email    string
	Password string
}

// UserInfo is what the session keeps about an authenticated user
type UserInfo struct {
	ID    uuid.UUID
	Name  string
	Email string
}

func toUserInfo(u *identity.User) *UserInfo {
	return &UserInfo{ID: u.ID, Name: u.Name, Email: u.Email}
}
