package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

type CustomerRepository interface {
	ListCustomers(ctx context.Context, tenantID uuid.UUID, f model.CustomerFilter) ([]model.Customer, error)
	GetCustomer(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error)
	CreateCustomer(ctx context.Context, tenantID uuid.UUID, in model.CustomerInput) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, tenantID, id uuid.UUID, in model.CustomerInput) (*model.Customer, error)
}

type CustomerService struct {
	repo CustomerRepository
}

func NewCustomerService(repo CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

func (s *CustomerService) List(ctx context.Context, f model.CustomerFilter) ([]model.Customer, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_customers", func(ctx context.Context) ([]model.Customer, error) {
		return s.repo.ListCustomers(ctx, tenantID, f)
	})
}

func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "get_customer", func(ctx context.Context) (*model.Customer, error) {
		return s.repo.GetCustomer(ctx, tenantID, id)
	})
}

// Create adds a customer. The unique code is assigned by the store.
func (s *CustomerService) Create(ctx context.Context, in model.CustomerInput) (*model.Customer, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.CreateCustomer(ctx, tenantID, in)
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, in model.CustomerInput) (*model.Customer, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateCustomer(ctx, tenantID, id, in)
}
