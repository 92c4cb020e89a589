package identity

import (
	"strings"
	"unicode/utf8"

	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt rejects longer inputs
	maxNameLength     = 100
	maxEmailLength    = 200
)

const passwordPolicyMessage = "Password must be at least 8 characters and include an uppercase letter, a lowercase letter, a digit and a symbol."

// User is a CRM account. The password is only ever held as a bcrypt hash.
type User struct {
	shared.BaseEntity
	Name         string
	Email        string
	PasswordHash string
}

// NewUser validates the registration fields and hashes the password.
func NewUser(name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = shared.NormalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return nil, shared.NewValidationError("All fields are required.")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, shared.NewValidationError("Name cannot exceed 100 characters.")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}, nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ValidatePassword enforces the password policy: at least 8 characters with
// one lowercase letter, one uppercase letter, one digit and one symbol.
// Any character outside [A-Za-z0-9] counts as a symbol.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength || len(password) > maxPasswordBytes {
		return shared.NewValidationError(passwordPolicyMessage)
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return shared.NewValidationError(passwordPolicyMessage)
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > maxEmailLength {
		return shared.NewValidationError("Email cannot exceed 200 characters.")
	}
	if !shared.IsValidEmail(email) {
		return shared.NewValidationError("Invalid email address.")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
