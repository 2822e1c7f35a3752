package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
)

type InvoiceStatus string

const (
	InvoiceDraft         InvoiceStatus = "draft"
	InvoiceSent          InvoiceStatus = "sent"
	InvoicePaid          InvoiceStatus = "paid"
	InvoicePartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceOverdue       InvoiceStatus = "overdue"
	InvoiceCancelled     InvoiceStatus = "cancelled"
)

// OpenInvoiceStatuses are the statuses with money still expected.
var OpenInvoiceStatuses = []InvoiceStatus{InvoiceSent, InvoicePartiallyPaid, InvoiceOverdue}

// IsOpen reports whether the invoice has been issued and still awaits payment.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceSent || s == InvoicePartiallyPaid || s == InvoiceOverdue
}

// Invoice represents the invoices table. The amount columns obey
// total_amount = subtotal + tax_amount - discount_amount and
// balance_due = total_amount - amount_paid.
type Invoice struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"user_id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceDate    time.Time       `json:"invoice_date"`
	DueDate        time.Time       `json:"due_date"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
	Status         InvoiceStatus   `json:"status"`
	Notes          *string         `json:"notes,omitempty"`
	Items          []InvoiceItem   `json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// InvoiceItem represents the invoice_items table; total = quantity * unit_price.
type InvoiceItem struct {
	ID                uuid.UUID       `json:"id"`
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	CustomerServiceID *uuid.UUID      `json:"customer_service_id,omitempty"`
	TaskID            *uuid.UUID      `json:"task_id,omitempty"`
	Description       string          `json:"description"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Total             decimal.Decimal `json:"total"`
	CreatedAt         time.Time       `json:"created_at"`
}

type InvoiceItemInput struct {
	CustomerServiceID *uuid.UUID      `json:"customer_service_id"`
	TaskID            *uuid.UUID      `json:"task_id"`
	Description       string          `json:"description" validate:"required,max=500"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

// InvoiceInput creates an invoice. When Items is non-empty the subtotal is
// the sum of the item totals and Subtotal is ignored.
type InvoiceInput struct {
	CustomerID     uuid.UUID          `json:"customer_id" validate:"required"`
	InvoiceDate    time.Time          `json:"invoice_date"`
	DueDate        time.Time          `json:"due_date" validate:"required"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	Notes          *string            `json:"notes"`
	Items          []InvoiceItemInput `json:"items" validate:"omitempty,dive"`
}

func (in *InvoiceInput) Validate(now time.Time) error {
	if in.InvoiceDate.IsZero() {
		in.InvoiceDate = now
	}
	extra := nonNegative(
		amount{"subtotal", in.Subtotal},
		amount{"tax_amount", in.TaxAmount},
		amount{"discount_amount", in.DiscountAmount},
	)
	for i, item := range in.Items {
		prefix := "items[" + strconv.Itoa(i) + "]."
		if !item.Quantity.IsPositive() {
			extra = append(extra, fieldErr(prefix+"quantity", "must be greater than zero"))
		}
		if item.UnitPrice.IsNegative() {
			extra = append(extra, fieldErr(prefix+"unit_price", "must not be negative"))
		}
	}
	if !in.DueDate.IsZero() && in.DueDate.Before(in.InvoiceDate) {
		extra = append(extra, fieldErr("due_date", "must not be before invoice_date"))
	}
	return check(in, extra...)
}

type InvoiceFilter struct {
	Statuses   []InvoiceStatus
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentCard         PaymentMethod = "card"
	PaymentOther        PaymentMethod = "other"
)

// Payment represents the payments table
type Payment struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	ReferenceNumber *string         `json:"reference_number,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	IdempotencyKey  *string         `json:"idempotency_key,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaymentInput records money received against an invoice. A repeated
// IdempotencyKey for the same invoice is applied once.
type PaymentInput struct {
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method" validate:"omitempty,oneof=cash bank_transfer cheque card other"`
	PaymentDate     time.Time       `json:"payment_date"`
	ReferenceNumber *string         `json:"reference_number" validate:"omitempty,max=100"`
	Notes           *string         `json:"notes"`
	IdempotencyKey  *string         `json:"idempotency_key" validate:"omitempty,max=200"`
}

func (in *PaymentInput) Validate(now time.Time) error {
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentBankTransfer
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = now
	}
	in.Amount = in.Amount.Round(2)
	var extra []apperr.FieldError
	if !in.Amount.IsPositive() {
		extra = append(extra, fieldErr("amount", "must be greater than zero"))
	}
	return check(in, extra...)
}
