package service

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/model"
	"github.com/teresa-solution/firm-management-service/internal/store"
	"github.com/teresa-solution/firm-management-service/internal/tenant"
)

func TestMain(m *testing.M) {
	newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	os.Exit(m.Run())
}

func sessionCtx(tenantID uuid.UUID) context.Context {
	return tenant.WithSession(context.Background(), tenant.Session{TenantID: tenantID, AccessToken: "token"})
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var errTimeout = apperr.Timeout("test", context.DeadlineExceeded)

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries a timeout once", func(t *testing.T) {
		var calls int
		v, err := withRetry(ctx, "op", func(context.Context) (int, error) {
			calls++
			if calls == 1 {
				return 0, errTimeout
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after the retry", func(t *testing.T) {
		var calls int
		_, err := withRetry(ctx, "op", func(context.Context) (int, error) {
			calls++
			return 0, errTimeout
		})
		assert.True(t, errors.Is(err, apperr.ErrTimeout))
		assert.Equal(t, 2, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		var calls int
		_, err := withRetry(ctx, "op", func(context.Context) (int, error) {
			calls++
			return 0, apperr.NotFound("customer")
		})
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
		assert.Equal(t, 1, calls)
	})
}

type fakeCustomers struct {
	CustomerRepository
	tenantID uuid.UUID
}

func (f *fakeCustomers) ListCustomers(_ context.Context, tenantID uuid.UUID, _ model.CustomerFilter) ([]model.Customer, error) {
	f.tenantID = tenantID
	return []model.Customer{{ID: uuid.New(), TenantID: tenantID, Name: "Acme Ltd"}}, nil
}

func TestServices_RequireSession(t *testing.T) {
	repo := &fakeCustomers{}
	svc := NewCustomerService(repo)

	_, err := svc.List(context.Background(), model.CustomerFilter{})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	tenantID := uuid.New()
	list, err := svc.List(sessionCtx(tenantID), model.CustomerFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, tenantID, repo.tenantID)
}

func TestCustomerService_CreateValidates(t *testing.T) {
	svc := NewCustomerService(&fakeCustomers{})
	_, err := svc.Create(sessionCtx(uuid.New()), model.CustomerInput{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

type fakeInvoices struct {
	InvoiceRepository
	created      model.Invoice
	paymentCalls int
	paymentErrs  []error
}

func (f *fakeInvoices) CreateInvoice(_ context.Context, _ uuid.UUID, inv model.Invoice) (*model.Invoice, error) {
	f.created = inv
	inv.InvoiceNumber = "INV-202610-0001"
	return &inv, nil
}

func (f *fakeInvoices) RecordPayment(_ context.Context, _, invoiceID uuid.UUID, in model.PaymentInput) (*store.PaymentResult, error) {
	f.paymentCalls++
	if len(f.paymentErrs) > 0 {
		err := f.paymentErrs[0]
		f.paymentErrs = f.paymentErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &store.PaymentResult{
		Invoice: model.Invoice{ID: invoiceID, Status: model.InvoicePartiallyPaid},
		Payment: model.Payment{InvoiceID: invoiceID, Amount: in.Amount},
	}, nil
}

func newInvoiceService(repo InvoiceRepository) *InvoiceService {
	svc := NewInvoiceService(repo)
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 15, 30, 0, 0, time.UTC) }
	return svc
}

func TestInvoiceService_CreatePricesCentrally(t *testing.T) {
	repo := &fakeInvoices{}
	svc := newInvoiceService(repo)

	inv, err := svc.Create(sessionCtx(uuid.New()), model.InvoiceInput{
		CustomerID: uuid.New(),
		DueDate:    time.Date(2026, 11, 16, 0, 0, 0, 0, time.UTC),
		Subtotal:   money("999"),
		TaxAmount:  money("10"),
		Items: []model.InvoiceItemInput{
			{Description: "Bookkeeping", Quantity: money("2"), UnitPrice: money("50")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-202610-0001", inv.InvoiceNumber)
	assert.Equal(t, model.InvoiceDraft, repo.created.Status)
	assert.True(t, money("100").Equal(repo.created.Subtotal), "items replace the caller's subtotal")
	assert.True(t, money("110").Equal(repo.created.TotalAmount))
	assert.True(t, money("110").Equal(repo.created.BalanceDue))
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), repo.created.InvoiceDate)
}

func TestInvoiceService_CreateRejectsExcessDiscount(t *testing.T) {
	repo := &fakeInvoices{}
	svc := newInvoiceService(repo)

	_, err := svc.Create(sessionCtx(uuid.New()), model.InvoiceInput{
		CustomerID:     uuid.New(),
		DueDate:        time.Date(2026, 11, 16, 0, 0, 0, 0, time.UTC),
		Subtotal:       money("100"),
		DiscountAmount: money("150"),
	})
	assert.Equal(t, []string{"discount_amount"}, fieldNames(err))
	assert.Equal(t, uuid.Nil, repo.created.CustomerID, "nothing stored")
}

func TestInvoiceService_RecordPaymentRetry(t *testing.T) {
	key := "pay-1"

	repo := &fakeInvoices{paymentErrs: []error{errTimeout}}
	svc := newInvoiceService(repo)
	res, err := svc.RecordPayment(sessionCtx(uuid.New()), uuid.New(), model.PaymentInput{
		Amount: money("50"), IdempotencyKey: &key,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.paymentCalls, "keyed payments are retried")
	assert.True(t, money("50").Equal(res.Payment.Amount))

	repo = &fakeInvoices{paymentErrs: []error{errTimeout}}
	svc = newInvoiceService(repo)
	_, err = svc.RecordPayment(sessionCtx(uuid.New()), uuid.New(), model.PaymentInput{Amount: money("50")})
	assert.True(t, errors.Is(err, apperr.ErrTimeout))
	assert.Equal(t, 1, repo.paymentCalls, "payments without a key are never repeated")

	_, err = svc.RecordPayment(sessionCtx(uuid.New()), uuid.New(), model.PaymentInput{Amount: money("-5")})
	assert.Equal(t, []string{"amount"}, fieldNames(err))
	assert.Equal(t, 1, repo.paymentCalls)
}

type fakeLeads struct {
	LeadRepository
	convertCalls int
}

func (f *fakeLeads) ConvertLead(context.Context, uuid.UUID, uuid.UUID) (*model.Customer, error) {
	f.convertCalls++
	return nil, errTimeout
}

func TestLeadService_ConvertIsNotRetried(t *testing.T) {
	repo := &fakeLeads{}
	_, err := NewLeadService(repo).Convert(sessionCtx(uuid.New()), uuid.New())
	assert.True(t, errors.Is(err, apperr.ErrTimeout))
	assert.Equal(t, 1, repo.convertCalls)
}

type fakeVAT struct {
	VATRepository
	saved model.VATReturnData
}

func (f *fakeVAT) SaveVATData(_ context.Context, _, returnID uuid.UUID, d model.VATReturnData) (*model.VATReturn, error) {
	f.saved = d
	return &model.VATReturn{ID: returnID, Status: model.VATReview, Data: &d}, nil
}

func TestVATService_SaveFiguresDerivesTotals(t *testing.T) {
	repo := &fakeVAT{}
	svc := NewVATService(repo)

	_, err := svc.SaveFigures(sessionCtx(uuid.New()), uuid.New(), model.VATFiguresInput{
		OutputTax: money("100"), InputTax: money("40"), Adjustments: money("-10"),
	})
	require.NoError(t, err)
	assert.True(t, money("50").Equal(repo.saved.NetVATPayable))
	assert.True(t, money("50").Equal(repo.saved.TotalVATDue))

	_, err = svc.SaveFigures(sessionCtx(uuid.New()), uuid.New(), model.VATFiguresInput{OutputTax: money("-1")})
	assert.Equal(t, []string{"output_tax"}, fieldNames(err))
}

type fakeProfiles struct {
	ProfileRepository
}

func (fakeProfiles) UpdateProfile(_ context.Context, tenantID uuid.UUID, in model.TenantProfileInput) (*model.TenantProfile, error) {
	return &model.TenantProfile{ID: tenantID, CompanyName: in.CompanyName, SubscriptionPlan: in.SubscriptionPlan}, nil
}

type recordingCache struct{ invalidated []uuid.UUID }

func (c *recordingCache) Invalidate(_ context.Context, tenantID uuid.UUID) {
	c.invalidated = append(c.invalidated, tenantID)
}

func TestProfileService_UpdateInvalidatesCache(t *testing.T) {
	cache := &recordingCache{}
	svc := NewProfileService(fakeProfiles{}, cache)
	tenantID := uuid.New()

	p, err := svc.Update(sessionCtx(tenantID), model.TenantProfileInput{
		CompanyName: "Ledger & Co", Email: "office@ledger.example", FullName: "Pat Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PlanBasic, p.SubscriptionPlan)
	assert.Equal(t, []uuid.UUID{tenantID}, cache.invalidated)
}

type fakeSweepStore struct {
	batches [][]store.OverdueUpdate
	calls   atomic.Int32
}

func (f *fakeSweepStore) SweepOverdue(_ context.Context, _ time.Time, _ int) ([]store.OverdueUpdate, error) {
	n := int(f.calls.Add(1)) - 1
	if n >= len(f.batches) {
		return nil, nil
	}
	return f.batches[n], nil
}

func updates(n int) []store.OverdueUpdate {
	out := make([]store.OverdueUpdate, n)
	for i := range out {
		out[i] = store.OverdueUpdate{InvoiceID: uuid.New(), TenantID: uuid.New(), InvoiceNumber: "INV-202609-0001"}
	}
	return out
}

func TestOverdueSweeper_SweepDrainsBatches(t *testing.T) {
	repo := &fakeSweepStore{batches: [][]store.OverdueUpdate{updates(2), updates(2), updates(1)}}
	w := NewOverdueSweeper(repo, time.Hour)
	w.batch = 2

	n, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, int32(3), repo.calls.Load())
}

func TestOverdueSweeper_RunStopsOnCancel(t *testing.T) {
	repo := &fakeSweepStore{}
	w := NewOverdueSweeper(repo, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return repo.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func fieldNames(err error) []string {
	var names []string
	for _, f := range apperr.FieldsOf(err) {
		names = append(names, f.Field)
	}
	return names
}
