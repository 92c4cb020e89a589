package crm

import (
	"strings"
	"unicode/utf8"

	"github.com/Replicator56/mini-crm/internal/domain/shared"
)

const (
	maxClientNameLength  = 200
	maxClientEmailLength = 200
	maxClientPhoneLength = 50
)

// Client is a contact record. Clients have no owner: any authenticated user
// may edit any client.
type Client struct {
	shared.BaseEntity
	Name  string
	Email string // optional
	Phone string // optional
	Notes string // optional
}

// ClientInput carries the four editable client fields.
type ClientInput struct {
	Name  string
	Email string
	Phone string
	Notes string
}

func (in ClientInput) normalized() ClientInput {
	return ClientInput{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
		Notes: strings.TrimSpace(in.Notes),
	}
}

func (in ClientInput) validate() error {
	if in.Name == "" {
		return shared.NewValidationError("Name is required.")
	}
	if utf8.RuneCountInString(in.Name) > maxClientNameLength {
		return shared.NewValidationError("Name cannot exceed 200 characters.")
	}
	if in.Email != "" {
		if len(in.Email) > maxClientEmailLength || !shared.IsValidEmail(in.Email) {
			return shared.NewValidationError("Invalid email address.")
		}
	}
	if utf8.RuneCountInString(in.Phone) > maxClientPhoneLength {
		return shared.NewValidationError("Phone cannot exceed 50 characters.")
	}
	return nil
}

// NewClient creates a client. Duplicates are allowed.
func NewClient(in ClientInput) (*Client, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return nil, err
	}
	return &Client{
		BaseEntity: shared.NewBaseEntity(),
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Notes:      in.Notes,
	}, nil
}

// Replace overwrites all four fields. Empty optional fields clear the value.
func (c *Client) Replace(in ClientInput) error {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return err
	}
	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Notes = in.Notes
	c.Touch()
	return nil
}
