package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

type invoiceRequest struct {
	model.InvoiceInput
	InvoiceDate *string `json:"invoice_date"`
	DueDate     *string `json:"due_date"`
}

func (r invoiceRequest) input() (model.InvoiceInput, error) {
	in := r.InvoiceInput
	var err error
	if in.InvoiceDate, err = dateOrZero("invoice_date", r.InvoiceDate); err != nil {
		return in, err
	}
	in.DueDate, err = dateOrZero("due_date", r.DueDate)
	return in, err
}

type paymentRequest struct {
	model.PaymentInput
	PaymentDate *string `json:"payment_date"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	from, err := parseOptionalDate("from", queryPtr(c, "from"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	to, err := parseOptionalDate("to", queryPtr(c, "to"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	invoices, err := s.svc.Invoices.List(c.Request.Context(), model.InvoiceFilter{
		Statuses:   queryList[model.InvoiceStatus](c, "status"),
		CustomerID: customerID,
		From:       from,
		To:         to,
	})
	respond(c, http.StatusOK, invoices, err)
}

func (s *Server) GetInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	inv, err := s.svc.Invoices.Get(c.Request.Context(), id)
	respond(c, http.StatusOK, inv, err)
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	inv, err := s.svc.Invoices.Create(c.Request.Context(), in)
	respond(c, http.StatusCreated, inv, err)
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req invoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	inv, err := s.svc.Invoices.Update(c.Request.Context(), id, in)
	respond(c, http.StatusOK, inv, err)
}

func (s *Server) SendInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	inv, err := s.svc.Invoices.Send(c.Request.Context(), id)
	respond(c, http.StatusOK, inv, err)
}

func (s *Server) CancelInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	inv, err := s.svc.Invoices.Cancel(c.Request.Context(), id)
	respond(c, http.StatusOK, inv, err)
}

func (s *Server) InvoiceStats(c *gin.Context) {
	stats, err := s.svc.Invoices.Stats(c.Request.Context())
	respond(c, http.StatusOK, stats, err)
}

func (s *Server) ListPayments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	payments, err := s.svc.Invoices.Payments(c.Request.Context(), id)
	respond(c, http.StatusOK, payments, err)
}

// RecordPayment applies a payment. The Idempotency-Key header is used when
// the body carries no key; a replayed request answers 200 instead of 201.
func (s *Server) RecordPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req paymentRequest
	if !bindJSON(c, &req) {
		return
	}
	in := req.PaymentInput
	var err error
	if in.PaymentDate, err = dateOrZero("payment_date", req.PaymentDate); err != nil {
		AbortWithError(c, err)
		return
	}
	if in.IdempotencyKey == nil {
		if key := strings.TrimSpace(c.GetHeader("Idempotency-Key")); key != "" {
			in.IdempotencyKey = &key
		}
	}

	res, err := s.svc.Invoices.RecordPayment(c.Request.Context(), id, in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	respond(c, status, res, nil)
}
