package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/teresa-solution/firm-management-service/internal/finance"
	"github.com/teresa-solution/firm-management-service/internal/model"
	"golang.org/x/sync/errgroup"
)

type CatalogRepository interface {
	ListServices(ctx context.Context, tenantID uuid.UUID, f model.ServiceFilter) ([]model.Service, error)
	GetService(ctx context.Context, tenantID, id uuid.UUID) (*model.Service, error)
	CreateService(ctx context.Context, tenantID uuid.UUID, in model.ServiceInput) (*model.Service, error)
	UpdateService(ctx context.Context, tenantID, id uuid.UUID, in model.ServiceInput) (*model.Service, error)
	ListCustomerServices(ctx context.Context, tenantID uuid.UUID, f model.CustomerServiceFilter) ([]model.CustomerService, error)
	GetCustomerService(ctx context.Context, tenantID, id uuid.UUID) (*model.CustomerService, error)
	CreateCustomerService(ctx context.Context, tenantID uuid.UUID, in model.CustomerServiceInput) (*model.CustomerService, error)
	UpdateCustomerService(ctx context.Context, tenantID, id uuid.UUID, in model.CustomerServiceUpdate) (*model.CustomerService, error)
}

// CatalogService manages the firm's service catalog and the customers
// subscribed to it.
type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) ListServices(ctx context.Context, f model.ServiceFilter) ([]model.Service, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_services", func(ctx context.Context) ([]model.Service, error) {
		return s.repo.ListServices(ctx, tenantID, f)
	})
}

func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "get_service", func(ctx context.Context) (*model.Service, error) {
		return s.repo.GetService(ctx, tenantID, id)
	})
}

func (s *CatalogService) CreateService(ctx context.Context, in model.ServiceInput) (*model.Service, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.CreateService(ctx, tenantID, in)
}

func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, in model.ServiceInput) (*model.Service, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateService(ctx, tenantID, id, in)
}

func (s *CatalogService) ListSubscriptions(ctx context.Context, f model.CustomerServiceFilter) ([]model.CustomerService, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_customer_services", func(ctx context.Context) ([]model.CustomerService, error) {
		return s.repo.ListCustomerServices(ctx, tenantID, f)
	})
}

func (s *CatalogService) GetSubscription(ctx context.Context, id uuid.UUID) (*model.CustomerService, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "get_customer_service", func(ctx context.Context) (*model.CustomerService, error) {
		return s.repo.GetCustomerService(ctx, tenantID, id)
	})
}

// Subscribe puts a customer on a service. Price and billing cycle default to
// the catalog entry.
func (s *CatalogService) Subscribe(ctx context.Context, in model.CustomerServiceInput) (*model.CustomerService, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.CreateCustomerService(ctx, tenantID, in)
}

func (s *CatalogService) UpdateSubscription(ctx context.Context, id uuid.UUID, in model.CustomerServiceUpdate) (*model.CustomerService, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateCustomerService(ctx, tenantID, id, in)
}

// Stats summarises the catalog and the recurring value of active
// subscriptions.
func (s *CatalogService) Stats(ctx context.Context) (*finance.ServiceStats, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	var (
		catalog []model.Service
		subs    []model.CustomerService
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = withRetry(gctx, "list_services", func(ctx context.Context) ([]model.Service, error) {
			return s.repo.ListServices(ctx, tenantID, model.ServiceFilter{})
		})
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = withRetry(gctx, "list_customer_services", func(ctx context.Context) ([]model.CustomerService, error) {
			return s.repo.ListCustomerServices(ctx, tenantID, model.CustomerServiceFilter{
				Statuses: []model.CustomerServiceStatus{model.SubscriptionLineActive},
			})
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats := finance.ComputeServiceStats(catalog, subs)
	return &stats, nil
}
