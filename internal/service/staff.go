package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

type StaffRepository interface {
	ListStaff(ctx context.Context, tenantID uuid.UUID, f model.StaffFilter) ([]model.StaffMember, error)
	GetStaff(ctx context.Context, tenantID, id uuid.UUID) (*model.StaffMember, error)
	CreateStaff(ctx context.Context, tenantID uuid.UUID, in model.StaffMemberInput) (*model.StaffMember, error)
	UpdateStaff(ctx context.Context, tenantID, id uuid.UUID, in model.StaffMemberInput) (*model.StaffMember, error)
}

type StaffService struct {
	repo StaffRepository
}

func NewStaffService(repo StaffRepository) *StaffService {
	return &StaffService{repo: repo}
}

func (s *StaffService) List(ctx context.Context, f model.StaffFilter) ([]model.StaffMember, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_staff", func(ctx context.Context) ([]model.StaffMember, error) {
		return s.repo.ListStaff(ctx, tenantID, f)
	})
}

func (s *StaffService) Get(ctx context.Context, id uuid.UUID) (*model.StaffMember, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "get_staff", func(ctx context.Context) (*model.StaffMember, error) {
		return s.repo.GetStaff(ctx, tenantID, id)
	})
}

func (s *StaffService) Create(ctx context.Context, in model.StaffMemberInput) (*model.StaffMember, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.CreateStaff(ctx, tenantID, in)
}

func (s *StaffService) Update(ctx context.Context, id uuid.UUID, in model.StaffMemberInput) (*model.StaffMember, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateStaff(ctx, tenantID, id, in)
}
