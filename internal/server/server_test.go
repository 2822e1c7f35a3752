package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/model"
	"github.com/teresa-solution/firm-management-service/internal/service"
	"github.com/teresa-solution/firm-management-service/internal/store"
	"github.com/teresa-solution/firm-management-service/internal/tenant"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthorizer struct {
	suspended map[uuid.UUID]bool
}

func (f *fakeAuthorizer) Authorize(_ context.Context, tenantID uuid.UUID) error {
	if f.suspended[tenantID] {
		return apperr.Unauthorized("subscription")
	}
	return nil
}

type fakeCustomerRepo struct {
	service.CustomerRepository
	owner   uuid.UUID
	created model.CustomerInput
}

func (f *fakeCustomerRepo) GetCustomer(_ context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	if tenantID != f.owner {
		return nil, apperr.Unauthorized("customer")
	}
	return &model.Customer{ID: id, TenantID: tenantID, Name: "Acme Ltd"}, nil
}

func (f *fakeCustomerRepo) CreateCustomer(_ context.Context, tenantID uuid.UUID, in model.CustomerInput) (*model.Customer, error) {
	f.created = in
	return &model.Customer{ID: uuid.New(), TenantID: tenantID, UniqueCode: "CUS-000001", Name: in.Name}, nil
}

type fakeInvoiceRepo struct {
	service.InvoiceRepository
	created model.Invoice
	payment model.PaymentInput
}

func (f *fakeInvoiceRepo) CreateInvoice(_ context.Context, tenantID uuid.UUID, inv model.Invoice) (*model.Invoice, error) {
	f.created = inv
	inv.ID = uuid.New()
	inv.TenantID = tenantID
	inv.InvoiceNumber = "INV-202610-0001"
	return &inv, nil
}

func (f *fakeInvoiceRepo) CancelInvoice(context.Context, uuid.UUID, uuid.UUID) (*model.Invoice, error) {
	return nil, apperr.Conflict("an invoice with payments cannot be cancelled")
}

func (f *fakeInvoiceRepo) RecordPayment(_ context.Context, _, invoiceID uuid.UUID, in model.PaymentInput) (*store.PaymentResult, error) {
	f.payment = in
	return &store.PaymentResult{
		Invoice:  model.Invoice{ID: invoiceID, Status: model.InvoicePartiallyPaid},
		Payment:  model.Payment{ID: uuid.New(), InvoiceID: invoiceID, Amount: in.Amount},
		Replayed: in.IdempotencyKey != nil && *in.IdempotencyKey == "seen-before",
	}, nil
}

type testServer struct {
	handler   http.Handler
	verifier  *tenant.Verifier
	authz     *fakeAuthorizer
	customers *fakeCustomerRepo
	invoices  *fakeInvoiceRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		verifier:  tenant.NewVerifier("server-test-key"),
		authz:     &fakeAuthorizer{suspended: map[uuid.UUID]bool{}},
		customers: &fakeCustomerRepo{},
		invoices:  &fakeInvoiceRepo{},
	}
	srv := New(Services{
		Customers: service.NewCustomerService(ts.customers),
		Invoices:  service.NewInvoiceService(ts.invoices),
	}, ts.verifier, ts.authz)
	ts.handler = srv.Handler()
	return ts
}

func (ts *testServer) do(t *testing.T, tenantID uuid.UUID, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if tenantID != uuid.Nil {
		token, err := ts.verifier.Issue(tenantID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		w := ts.do(t, uuid.Nil, http.MethodGet, "/api/v1/customers/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decodeError(t, w).Type)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other, err := tenant.NewVerifier("someone-else").Issue(uuid.New(), time.Hour)
		require.NoError(t, err)
		w := ts.do(t, uuid.Nil, http.MethodGet, "/api/v1/customers/"+uuid.NewString(), "", "Authorization", "Bearer "+other)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("suspended subscription", func(t *testing.T) {
		suspended := uuid.New()
		ts.authz.suspended[suspended] = true
		w := ts.do(t, suspended, http.MethodGet, "/api/v1/customers/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "forbidden", decodeError(t, w).Type)
	})
}

func TestOtherTenantRowsAreNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.customers.owner = uuid.New()

	w := ts.do(t, ts.customers.owner, http.MethodGet, "/api/v1/customers/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, uuid.New(), http.MethodGet, "/api/v1/customers/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", decodeError(t, w).Message)
}

func TestValidationErrorBody(t *testing.T) {
	ts := newTestServer(t)

	t.Run("bad path id", func(t *testing.T) {
		w := ts.do(t, uuid.New(), http.MethodGet, "/api/v1/customers/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		payload := decodeError(t, w)
		require.Len(t, payload.Errors, 1)
		assert.Equal(t, "id", payload.Errors[0].Field)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := ts.do(t, uuid.New(), http.MethodPost, "/api/v1/customers", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request", decodeError(t, w).Errors[0].Field)
	})

	t.Run("missing name", func(t *testing.T) {
		w := ts.do(t, uuid.New(), http.MethodPost, "/api/v1/customers", `{"email":"ops@acme.test"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		payload := decodeError(t, w)
		assert.Equal(t, "validation_error", payload.Type)
		require.NotEmpty(t, payload.Errors)
		assert.Equal(t, "name", payload.Errors[0].Field)
	})
}

func TestCreateCustomer(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, uuid.New(), http.MethodPost, "/api/v1/customers", `{"name":"Acme Ltd","tax_registration_number":"100200300400003"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data model.Customer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CUS-000001", resp.Data.UniqueCode)
	require.NotNil(t, ts.customers.created.TaxRegistrationNumber)
	assert.Equal(t, "100200300400003", *ts.customers.created.TaxRegistrationNumber)
}

func TestCreateInvoiceParsesDates(t *testing.T) {
	ts := newTestServer(t)

	body := `{
		"customer_id": "` + uuid.NewString() + `",
		"invoice_date": "2026-10-01",
		"due_date": "2026-10-31",
		"tax_amount": "5",
		"items": [{"description": "Bookkeeping", "quantity": "2", "unit_price": "50"}]
	}`
	w := ts.do(t, uuid.New(), http.MethodPost, "/api/v1/invoices", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := ts.invoices.created
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), created.InvoiceDate)
	assert.Equal(t, time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC), created.DueDate)
	assert.True(t, decimal.NewFromInt(105).Equal(created.TotalAmount))

	w = ts.do(t, uuid.New(), http.MethodPost, "/api/v1/invoices",
		`{"customer_id":"`+uuid.NewString()+`","due_date":"31/10/2026"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "due_date", decodeError(t, w).Errors[0].Field)
}

func TestCancelInvoiceConflict(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, uuid.New(), http.MethodPost, "/api/v1/invoices/"+uuid.NewString()+"/cancel", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "an invoice with payments cannot be cancelled", decodeError(t, w).Message)
}

func TestRecordPayment(t *testing.T) {
	ts := newTestServer(t)
	path := "/api/v1/invoices/" + uuid.NewString() + "/payments"

	w := ts.do(t, uuid.New(), http.MethodPost, path, `{"amount":"50","payment_date":"2026-10-02"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, ts.invoices.payment.IdempotencyKey)
	assert.Equal(t, model.PaymentBankTransfer, ts.invoices.payment.PaymentMethod)

	w = ts.do(t, uuid.New(), http.MethodPost, path, `{"amount":"50"}`, "Idempotency-Key", "seen-before")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, ts.invoices.payment.IdempotencyKey)
	assert.Equal(t, "seen-before", *ts.invoices.payment.IdempotencyKey)

	w = ts.do(t, uuid.New(), http.MethodPost, path, `{"amount":"0"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount", decodeError(t, w).Errors[0].Field)
}
