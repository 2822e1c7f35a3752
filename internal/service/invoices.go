package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/teresa-solution/firm-management-service/internal/finance"
	"github.com/teresa-solution/firm-management-service/internal/logger"
	"github.com/teresa-solution/firm-management-service/internal/model"
	"github.com/teresa-solution/firm-management-service/internal/store"
)

type InvoiceRepository interface {
	ListInvoices(ctx context.Context, tenantID uuid.UUID, f model.InvoiceFilter) ([]model.Invoice, error)
	GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*model.Invoice, error)
	CreateInvoice(ctx context.Context, tenantID uuid.UUID, inv model.Invoice) (*model.Invoice, error)
	UpdateDraftInvoice(ctx context.Context, tenantID, id uuid.UUID, inv model.Invoice) (*model.Invoice, error)
	MarkInvoiceSent(ctx context.Context, tenantID, id uuid.UUID) (*model.Invoice, error)
	CancelInvoice(ctx context.Context, tenantID, id uuid.UUID) (*model.Invoice, error)
	RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, in model.PaymentInput) (*store.PaymentResult, error)
	ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]model.Payment, error)
}

// InvoiceService bills customers and records the money they pay. All
// amounts are priced here, never taken from the caller.
type InvoiceService struct {
	repo InvoiceRepository
	now  func() time.Time
	log  zerolog.Logger
}

func NewInvoiceService(repo InvoiceRepository) *InvoiceService {
	return &InvoiceService{repo: repo, now: time.Now, log: logger.WithComponent("invoices")}
}

func (s *InvoiceService) List(ctx context.Context, f model.InvoiceFilter) ([]model.Invoice, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_invoices", func(ctx context.Context) ([]model.Invoice, error) {
		return s.repo.ListInvoices(ctx, tenantID, f)
	})
}

func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "get_invoice", func(ctx context.Context) (*model.Invoice, error) {
		return s.repo.GetInvoice(ctx, tenantID, id)
	})
}

// Create prices the input and stores it as a draft.
func (s *InvoiceService) Create(ctx context.Context, in model.InvoiceInput) (*model.Invoice, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	priced, err := s.price(in)
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.CreateInvoice(ctx, tenantID, priced)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("tenant_id", tenantID.String()).
		Str("invoice_number", inv.InvoiceNumber).
		Str("total", inv.TotalAmount.StringFixed(2)).
		Msg("Invoice created")
	return inv, nil
}

// Update re-prices a draft.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, in model.InvoiceInput) (*model.Invoice, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	priced, err := s.price(in)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateDraftInvoice(ctx, tenantID, id, priced)
}

func (s *InvoiceService) price(in model.InvoiceInput) (model.Invoice, error) {
	if err := in.Validate(today(s.now())); err != nil {
		return model.Invoice{}, err
	}
	return finance.PriceInvoice(in)
}

func (s *InvoiceService) Send(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.MarkInvoiceSent(ctx, tenantID, id)
}

func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.CancelInvoice(ctx, tenantID, id)
}

// RecordPayment applies a payment. With an idempotency key the call is safe
// to repeat and is retried once on timeout; without one it is attempted
// exactly once.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, in model.PaymentInput) (*store.PaymentResult, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(today(s.now())); err != nil {
		return nil, err
	}
	record := func(ctx context.Context) (*store.PaymentResult, error) {
		return s.repo.RecordPayment(ctx, tenantID, invoiceID, in)
	}
	var res *store.PaymentResult
	if in.IdempotencyKey != nil {
		res, err = withRetry(ctx, "record_payment", record)
	} else {
		res, err = record(ctx)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("tenant_id", tenantID.String()).
		Str("invoice_number", res.Invoice.InvoiceNumber).
		Str("amount", in.Amount.StringFixed(2)).
		Bool("replayed", res.Replayed).
		Str("status", string(res.Invoice.Status)).
		Msg("Payment recorded")
	return res, nil
}

func (s *InvoiceService) Payments(ctx context.Context, invoiceID uuid.UUID) ([]model.Payment, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "list_payments", func(ctx context.Context) ([]model.Payment, error) {
		return s.repo.ListPayments(ctx, tenantID, invoiceID)
	})
}

func (s *InvoiceService) Stats(ctx context.Context) (*finance.InvoiceStats, error) {
	invoices, err := s.List(ctx, model.InvoiceFilter{})
	if err != nil {
		return nil, err
	}
	stats := finance.ComputeInvoiceStats(invoices)
	return &stats, nil
}
