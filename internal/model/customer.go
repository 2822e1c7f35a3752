package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents the customers table
type Customer struct {
	ID                    uuid.UUID `json:"id"`
	TenantID              uuid.UUID `json:"user_id"`
	UniqueCode            string    `json:"unique_code"`
	Name                  string    `json:"name"`
	CompanyName           *string   `json:"company_name,omitempty"`
	Email                 *string   `json:"email,omitempty"`
	Phone                 *string   `json:"phone,omitempty"`
	Mobile                *string   `json:"mobile,omitempty"`
	Address               *string   `json:"address,omitempty"`
	TaxRegistrationNumber *string   `json:"tax_registration_number,omitempty"` // Plaintext (encrypted in DB)
	IsActive              bool      `json:"is_active"`
	Notes                 *string   `json:"notes,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type CustomerInput struct {
	Name                  string  `json:"name" validate:"required,max=200"`
	CompanyName           *string `json:"company_name" validate:"omitempty,max=200"`
	Email                 *string `json:"email" validate:"omitempty,email"`
	Phone                 *string `json:"phone" validate:"omitempty,max=50"`
	Mobile                *string `json:"mobile" validate:"omitempty,max=50"`
	Address               *string `json:"address" validate:"omitempty,max=500"`
	TaxRegistrationNumber *string `json:"tax_registration_number" validate:"omitempty,max=50"`
	IsActive              *bool   `json:"is_active"`
	Notes                 *string `json:"notes"`
}

func (in *CustomerInput) Validate() error { return check(in) }

type CustomerFilter struct {
	ActiveOnly bool
	// Search matches name, unique code, company name and email, case-insensitively.
	Search string
}
