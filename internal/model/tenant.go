package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionInactive  SubscriptionStatus = "inactive"
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionSuspended SubscriptionStatus = "suspended"
)

// AllowsAccess reports whether a tenant in this state may use the API.
func (s SubscriptionStatus) AllowsAccess() bool {
	return s == SubscriptionActive || s == SubscriptionTrial
}

type SubscriptionPlan string

const (
	PlanBasic        SubscriptionPlan = "basic"
	PlanProfessional SubscriptionPlan = "professional"
	PlanEnterprise   SubscriptionPlan = "enterprise"
)

// TenantProfile represents the user_profiles table. ID is the tenant id that
// scopes every other table.
type TenantProfile struct {
	ID                 uuid.UUID          `json:"id"`
	CompanyName        string             `json:"company_name"`
	CompanyLogoURL     *string            `json:"company_logo_url,omitempty"`
	Email              string             `json:"email"`
	FullName           string             `json:"full_name"`
	Phone              *string            `json:"phone,omitempty"`
	Address            *string            `json:"address,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	SubscriptionPlan   SubscriptionPlan   `json:"subscription_plan"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type TenantProfileInput struct {
	CompanyName      string           `json:"company_name" validate:"required,max=200"`
	CompanyLogoURL   *string          `json:"company_logo_url" validate:"omitempty,url"`
	Email            string           `json:"email" validate:"required,email"`
	FullName         string           `json:"full_name" validate:"required,max=200"`
	Phone            *string          `json:"phone" validate:"omitempty,max=50"`
	Address          *string          `json:"address" validate:"omitempty,max=500"`
	SubscriptionPlan SubscriptionPlan `json:"subscription_plan" validate:"omitempty,oneof=basic professional enterprise"`
}

func (in *TenantProfileInput) Validate() error {
	if in.SubscriptionPlan == "" {
		in.SubscriptionPlan = PlanBasic
	}
	return check(in)
}

// StaffMember represents the staff_members table
type StaffMember struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StaffMemberInput struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	Role     string  `json:"role" validate:"required,max=100"`
	IsActive *bool   `json:"is_active"`
}

func (in *StaffMemberInput) Validate() error { return check(in) }

type StaffFilter struct {
	ActiveOnly bool
}
