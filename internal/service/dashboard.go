package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/finance"
	"github.com/teresa-solution/firm-management-service/internal/model"
	"golang.org/x/sync/errgroup"
)

// DashboardRepository is the read side the dashboard and reports need.
type DashboardRepository interface {
	ListCustomers(ctx context.Context, tenantID uuid.UUID, f model.CustomerFilter) ([]model.Customer, error)
	ListLeads(ctx context.Context, tenantID uuid.UUID, f model.LeadFilter) ([]model.Lead, error)
	ListCustomerServices(ctx context.Context, tenantID uuid.UUID, f model.CustomerServiceFilter) ([]model.CustomerService, error)
	ListInvoices(ctx context.Context, tenantID uuid.UUID, f model.InvoiceFilter) ([]model.Invoice, error)
	ListTasks(ctx context.Context, tenantID uuid.UUID, f model.TaskFilter) ([]model.Task, error)
}

// topCustomerCount is how many customers a report ranks.
const topCustomerCount = 5

type DashboardService struct {
	repo DashboardRepository
	now  func() time.Time
}

func NewDashboardService(repo DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

// Stats runs the five dashboard reads concurrently. The first failure
// cancels the others and fails the whole dashboard.
func (s *DashboardService) Stats(ctx context.Context) (*finance.DashboardStats, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}

	var (
		customers []model.Customer
		leads     []model.Lead
		services  []model.CustomerService
		invoices  []model.Invoice
		tasks     []model.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = withRetry(gctx, "list_customers", func(ctx context.Context) ([]model.Customer, error) {
			return s.repo.ListCustomers(ctx, tenantID, model.CustomerFilter{ActiveOnly: true})
		})
		return err
	})
	g.Go(func() error {
		var err error
		leads, err = withRetry(gctx, "list_leads", func(ctx context.Context) ([]model.Lead, error) {
			return s.repo.ListLeads(ctx, tenantID, model.LeadFilter{Statuses: model.OpenLeadStatuses})
		})
		return err
	})
	g.Go(func() error {
		var err error
		services, err = withRetry(gctx, "list_customer_services", func(ctx context.Context) ([]model.CustomerService, error) {
			return s.repo.ListCustomerServices(ctx, tenantID, model.CustomerServiceFilter{
				Statuses: []model.CustomerServiceStatus{model.SubscriptionLineActive},
			})
		})
		return err
	})
	g.Go(func() error {
		var err error
		invoices, err = withRetry(gctx, "list_invoices", func(ctx context.Context) ([]model.Invoice, error) {
			return s.repo.ListInvoices(ctx, tenantID, model.InvoiceFilter{Statuses: model.OpenInvoiceStatuses})
		})
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = withRetry(gctx, "list_tasks", func(ctx context.Context) ([]model.Task, error) {
			return s.repo.ListTasks(ctx, tenantID, model.TaskFilter{Statuses: model.PendingTaskStatuses})
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := finance.ComputeDashboard(customers, leads, services, invoices, tasks)
	return &stats, nil
}

// Report summarises invoices dated within [from, to]. A nil from defaults
// to January 1 of the current year and a nil to defaults to today.
func (s *DashboardService) Report(ctx context.Context, from, to *time.Time) (*finance.Report, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	end := today(s.now())
	if to != nil {
		end = *to
	}
	start := time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if from != nil {
		start = *from
	}
	if end.Before(start) {
		return nil, apperr.Validation("to", "must not be before from")
	}

	var (
		invoices  []model.Invoice
		customers []model.Customer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = withRetry(gctx, "list_invoices", func(ctx context.Context) ([]model.Invoice, error) {
			return s.repo.ListInvoices(ctx, tenantID, model.InvoiceFilter{From: &start, To: &end})
		})
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = withRetry(gctx, "list_customers", func(ctx context.Context) ([]model.Customer, error) {
			return s.repo.ListCustomers(ctx, tenantID, model.CustomerFilter{})
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(customers))
	active := 0
	for _, c := range customers {
		names[c.ID] = c.Name
		if c.IsActive {
			active++
		}
	}
	report := finance.ReportSummary(invoices, active)
	report.From, report.To = start, end
	report.TopCustomers = finance.TopCustomers(invoices, names, topCustomerCount)
	return &report, nil
}
