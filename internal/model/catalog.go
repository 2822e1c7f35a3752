package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
)

type BillingCycle string

const (
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"
	CycleOneTime   BillingCycle = "one-time"
)

// Service represents the services table: a tenant's catalog entry.
type Service struct {
	ID           uuid.UUID       `json:"id"`
	TenantID     uuid.UUID       `json:"user_id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	BillingCycle BillingCycle    `json:"billing_cycle"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ServiceInput struct {
	Name         string          `json:"name" validate:"required,max=200"`
	Description  *string         `json:"description" validate:"omitempty,max=2000"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	BillingCycle BillingCycle    `json:"billing_cycle" validate:"omitempty,oneof=monthly quarterly yearly one-time"`
	IsActive     *bool           `json:"is_active"`
}

func (in *ServiceInput) Validate() error {
	if in.BillingCycle == "" {
		in.BillingCycle = CycleMonthly
	}
	return check(in, nonNegative(amount{"default_price", in.DefaultPrice})...)
}

type ServiceFilter struct {
	ActiveOnly bool
}

type CustomerServiceStatus string

const (
	SubscriptionLineActive    CustomerServiceStatus = "active"
	SubscriptionLineCompleted CustomerServiceStatus = "completed"
	SubscriptionLinePaused    CustomerServiceStatus = "paused"
	SubscriptionLineCancelled CustomerServiceStatus = "cancelled"
)

// CustomerService represents the customer_services table. Price and cycle are
// the customer's own terms and may diverge from the service defaults.
type CustomerService struct {
	ID           uuid.UUID             `json:"id"`
	CustomerID   uuid.UUID             `json:"customer_id"`
	ServiceID    uuid.UUID             `json:"service_id"`
	ServiceName  string                `json:"service_name,omitempty"`
	Status       CustomerServiceStatus `json:"status"`
	Price        decimal.Decimal       `json:"price"`
	BillingCycle BillingCycle          `json:"billing_cycle"`
	StartDate    time.Time             `json:"start_date"`
	EndDate      *time.Time            `json:"end_date,omitempty"`
	Notes        *string               `json:"notes,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// CustomerServiceInput subscribes a customer to a service. A nil Price or an
// empty BillingCycle falls back to the service defaults.
type CustomerServiceInput struct {
	CustomerID   uuid.UUID             `json:"customer_id" validate:"required"`
	ServiceID    uuid.UUID             `json:"service_id" validate:"required"`
	Status       CustomerServiceStatus `json:"status" validate:"omitempty,oneof=active completed paused cancelled"`
	Price        *decimal.Decimal      `json:"price"`
	BillingCycle BillingCycle          `json:"billing_cycle" validate:"omitempty,oneof=monthly quarterly yearly one-time"`
	StartDate    *time.Time            `json:"start_date"`
	EndDate      *time.Time            `json:"end_date"`
	Notes        *string               `json:"notes"`
}

func (in *CustomerServiceInput) Validate() error {
	if in.Status == "" {
		in.Status = SubscriptionLineActive
	}
	var extra []apperr.FieldError
	if in.Price != nil {
		extra = append(extra, nonNegative(amount{"price", *in.Price})...)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		extra = append(extra, fieldErr("end_date", "must not be before start_date"))
	}
	return check(in, extra...)
}

type CustomerServiceUpdate struct {
	Status  CustomerServiceStatus `json:"status" validate:"required,oneof=active completed paused cancelled"`
	Price   *decimal.Decimal      `json:"price"`
	EndDate *time.Time            `json:"end_date"`
	Notes   *string               `json:"notes"`
}

func (in *CustomerServiceUpdate) Validate() error {
	var extra []apperr.FieldError
	if in.Price != nil {
		extra = append(extra, nonNegative(amount{"price", *in.Price})...)
	}
	return check(in, extra...)
}

type CustomerServiceFilter struct {
	CustomerID *uuid.UUID
	Statuses   []CustomerServiceStatus
}
