package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/teresa-solution/firm-management-service/internal/logger"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

type LeadRepository interface {
	ListLeads(ctx context.Context, tenantID uuid.UUID, f model.LeadFilter) ([]model.Lead, error)
	GetLead(ctx context.Context, tenantID, id uuid.UUID) (*model.Lead, error)
	CreateLead(ctx context.Context, tenantID uuid.UUID, in model.LeadInput) (*model.Lead, error)
	UpdateLead(ctx context.Context, tenantID, id uuid.UUID, in model.LeadInput) (*model.Lead, error)
	ConvertLead(ctx context.Context, tenantID, leadID uuid.UUID) (*model.Customer, error)
	ListLeadServices(ctx context.Context, tenantID, leadID uuid.UUID) ([]model.LeadService, error)
	AddLeadActivity(ctx context.Context, tenantID, leadID uuid.UUID, in model.LeadActivityInput) (*model.LeadActivity, error)
	ListLeadActivities(ctx context.Context, tenantID, leadID uuid.UUID) ([]model.LeadActivity, error)
}

// LeadService runs the sales pipeline up to the conversion of a lead into
// a customer.
type LeadService struct {
	repo LeadRepository
	log  zerolog.Logger
}

func NewLeadService(repo LeadRepository) *LeadService {
	return &LeadService{repo: repo, log: logger.WithComponent("leads")}
}

func (s *LeadService) List(ctx context.Context, f model.LeadFilter) ([]model.Lead, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_leads", func(ctx context.Context) ([]model.Lead, error) {
		return s.repo.ListLeads(ctx, tenantID, f)
	})
}

func (s *LeadService) Get(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "get_lead", func(ctx context.Context) (*model.Lead, error) {
		return s.repo.GetLead(ctx, tenantID, id)
	})
}

func (s *LeadService) Create(ctx context.Context, in model.LeadInput) (*model.Lead, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.CreateLead(ctx, tenantID, in)
}

func (s *LeadService) Update(ctx context.Context, id uuid.UUID, in model.LeadInput) (*model.Lead, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateLead(ctx, tenantID, id, in)
}

// Convert turns the lead into a customer. It is never retried: a timeout
// may hide a committed conversion, and a second attempt would then fail
// with a Conflict.
func (s *LeadService) Convert(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.ConvertLead(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("tenant_id", tenantID.String()).
		Str("lead_id", id.String()).
		Str("customer_code", c.UniqueCode).
		Msg("Lead converted")
	return c, nil
}

func (s *LeadService) Services(ctx context.Context, id uuid.UUID) ([]model.LeadService, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_lead_services", func(ctx context.Context) ([]model.LeadService, error) {
		return s.repo.ListLeadServices(ctx, tenantID, id)
	})
}

func (s *LeadService) AddActivity(ctx context.Context, id uuid.UUID, in model.LeadActivityInput) (*model.LeadActivity, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.AddLeadActivity(ctx, tenantID, id, in)
}

func (s *LeadService) Activities(ctx context.Context, id uuid.UUID) ([]model.LeadActivity, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_lead_activities", func(ctx context.Context) ([]model.LeadActivity, error) {
		return s.repo.ListLeadActivities(ctx, tenantID, id)
	})
}
