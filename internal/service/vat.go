package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/teresa-solution/firm-management-service/internal/finance"
	"github.com/teresa-solution/firm-management-service/internal/logger"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

type VATRepository interface {
	ListVATReturns(ctx context.Context, tenantID uuid.UUID, f model.VATReturnFilter) ([]model.VATReturn, error)
	GetVATReturn(ctx context.Context, tenantID, id uuid.UUID) (*model.VATReturn, error)
	CreateVATReturn(ctx context.Context, tenantID uuid.UUID, in model.VATReturnInput) (*model.VATReturn, error)
	SaveVATData(ctx context.Context, tenantID, returnID uuid.UUID, d model.VATReturnData) (*model.VATReturn, error)
	ChangeVATStatus(ctx context.Context, tenantID, id uuid.UUID, in model.VATStatusUpdate) (*model.VATReturn, error)
	ListVATStatusChanges(ctx context.Context, tenantID, returnID uuid.UUID) ([]model.VATStatusChange, error)
}

// VATService tracks the VAT filings the firm prepares for its customers.
type VATService struct {
	repo VATRepository
	now  func() time.Time
	log  zerolog.Logger
}

func NewVATService(repo VATRepository) *VATService {
	return &VATService{repo: repo, now: time.Now, log: logger.WithComponent("vat")}
}

func (s *VATService) List(ctx context.Context, f model.VATReturnFilter) ([]model.VATReturn, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_vat_returns", func(ctx context.Context) ([]model.VATReturn, error) {
		return s.repo.ListVATReturns(ctx, tenantID, f)
	})
}

func (s *VATService) Get(ctx context.Context, id uuid.UUID) (*model.VATReturn, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "get_vat_return", func(ctx context.Context) (*model.VATReturn, error) {
		return s.repo.GetVATReturn(ctx, tenantID, id)
	})
}

// Create opens a return for a customer and period in draft.
func (s *VATService) Create(ctx context.Context, in model.VATReturnInput) (*model.VATReturn, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.CreateVATReturn(ctx, tenantID, in)
}

// SaveFigures derives the payable amounts from the raw figures and stores
// them on the return.
func (s *VATService) SaveFigures(ctx context.Context, id uuid.UUID, in model.VATFiguresInput) (*model.VATReturn, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.SaveVATData(ctx, tenantID, id, finance.ComputeVATTotals(in))
}

func (s *VATService) ChangeStatus(ctx context.Context, id uuid.UUID, in model.VATStatusUpdate) (*model.VATReturn, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r, err := s.repo.ChangeVATStatus(ctx, tenantID, id, in)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("tenant_id", tenantID.String()).
		Str("vat_return_id", id.String()).
		Str("status", string(r.Status)).
		Msg("VAT return status changed")
	return r, nil
}

func (s *VATService) History(ctx context.Context, id uuid.UUID) ([]model.VATStatusChange, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_vat_status_changes", func(ctx context.Context) ([]model.VATStatusChange, error) {
		return s.repo.ListVATStatusChanges(ctx, tenantID, id)
	})
}

func (s *VATService) Summary(ctx context.Context) (*finance.VATSummary, error) {
	returns, err := s.List(ctx, model.VATReturnFilter{})
	if err != nil {
		return nil, err
	}
	summary := finance.ComputeVATSummary(returns, s.now())
	return &summary, nil
}
