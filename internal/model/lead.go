package model

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadNew         LeadStatus = "new"
	LeadContacted   LeadStatus = "contacted"
	LeadQualified   LeadStatus = "qualified"
	LeadNegotiating LeadStatus = "negotiating"
	LeadConverted   LeadStatus = "converted"
	LeadLost        LeadStatus = "lost"
)

// OpenLeadStatuses are the statuses the dashboard counts as active pipeline.
var OpenLeadStatuses = []LeadStatus{LeadNew, LeadContacted, LeadQualified, LeadNegotiating}

// IsOpen reports whether the lead is still in the pipeline.
func (s LeadStatus) IsOpen() bool {
	return s != LeadConverted && s != LeadLost
}

// Lead represents the leads table
type Lead struct {
	ID                    uuid.UUID  `json:"id"`
	TenantID              uuid.UUID  `json:"user_id"`
	UniqueCode            string     `json:"unique_code"`
	Name                  string     `json:"name"`
	CompanyName           *string    `json:"company_name,omitempty"`
	Email                 *string    `json:"email,omitempty"`
	Phone                 *string    `json:"phone,omitempty"`
	Mobile                *string    `json:"mobile,omitempty"`
	Address               *string    `json:"address,omitempty"`
	Status                LeadStatus `json:"status"`
	Source                *string    `json:"source,omitempty"`
	Notes                 *string    `json:"notes,omitempty"`
	ConvertedToCustomerID *uuid.UUID `json:"converted_to_customer_id,omitempty"`
	ConvertedAt           *time.Time `json:"converted_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// LeadInput creates or replaces a lead. Status may not be set to converted
// here; conversion has its own operation.
type LeadInput struct {
	Name        string      `json:"name" validate:"required,max=200"`
	CompanyName *string     `json:"company_name" validate:"omitempty,max=200"`
	Email       *string     `json:"email" validate:"omitempty,email"`
	Phone       *string     `json:"phone" validate:"omitempty,max=50"`
	Mobile      *string     `json:"mobile" validate:"omitempty,max=50"`
	Address     *string     `json:"address" validate:"omitempty,max=500"`
	Status      LeadStatus  `json:"status" validate:"omitempty,oneof=new contacted qualified negotiating lost"`
	Source      *string     `json:"source" validate:"omitempty,max=100"`
	Notes       *string     `json:"notes"`
	ServiceIDs  []uuid.UUID `json:"service_ids"`
}

func (in *LeadInput) Validate() error {
	if in.Status == "" {
		in.Status = LeadNew
	}
	return check(in)
}

type LeadFilter struct {
	Statuses []LeadStatus
	Search   string
}

// LeadService represents the lead_services table
type LeadService struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"lead_id"`
	ServiceID uuid.UUID `json:"service_id"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ActivityType string

const (
	ActivityCall         ActivityType = "call"
	ActivityEmail        ActivityType = "email"
	ActivityMeeting      ActivityType = "meeting"
	ActivityNote         ActivityType = "note"
	ActivityStatusChange ActivityType = "status_change"
)

// LeadActivity represents the lead_activities table
type LeadActivity struct {
	ID           uuid.UUID    `json:"id"`
	LeadID       uuid.UUID    `json:"lead_id"`
	ActivityType ActivityType `json:"activity_type"`
	Description  string       `json:"description"`
	CreatedBy    uuid.UUID    `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
}

type LeadActivityInput struct {
	ActivityType ActivityType `json:"activity_type" validate:"required,oneof=call email meeting note status_change"`
	Description  string       `json:"description" validate:"required,max=2000"`
}

func (in *LeadActivityInput) Validate() error { return check(in) }
