package finance

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

// LineTotal is quantity * unit price rounded to cents.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// PriceInvoice turns validated input into a draft invoice with every amount
// column filled in. Items, when present, replace the caller's subtotal.
func PriceInvoice(in model.InvoiceInput) (model.Invoice, error) {
	inv := model.Invoice{
		CustomerID:     in.CustomerID,
		InvoiceDate:    in.InvoiceDate,
		DueDate:        in.DueDate,
		Subtotal:       in.Subtotal.Round(2),
		TaxAmount:      in.TaxAmount.Round(2),
		DiscountAmount: in.DiscountAmount.Round(2),
		AmountPaid:     decimal.Zero,
		Status:         model.InvoiceDraft,
		Notes:          in.Notes,
	}

	if len(in.Items) > 0 {
		inv.Subtotal = decimal.Zero
		inv.Items = make([]model.InvoiceItem, 0, len(in.Items))
		for _, it := range in.Items {
			qty, price := it.Quantity.Round(2), it.UnitPrice.Round(2)
			total := LineTotal(qty, price)
			inv.Subtotal = inv.Subtotal.Add(total)
			inv.Items = append(inv.Items, model.InvoiceItem{
				CustomerServiceID: it.CustomerServiceID,
				TaskID:            it.TaskID,
				Description:       it.Description,
				Quantity:          qty,
				UnitPrice:         price,
				Total:             total,
			})
		}
	}

	gross := inv.Subtotal.Add(inv.TaxAmount)
	if inv.DiscountAmount.GreaterThan(gross) {
		return model.Invoice{}, apperr.Validation("discount_amount", "must not exceed subtotal plus tax")
	}
	inv.TotalAmount = gross.Sub(inv.DiscountAmount)
	inv.BalanceDue = inv.TotalAmount
	return inv, nil
}

// ApplyPayment returns inv with amount applied. The amount is rounded to
// cents first. It rejects non-positive amounts, overpayment and payments
// against draft or cancelled invoices.
func ApplyPayment(inv model.Invoice, amount decimal.Decimal) (model.Invoice, error) {
	amount = amount.Round(2)
	switch {
	case inv.Status == model.InvoiceDraft:
		return inv, apperr.Validation("invoice", "a draft invoice must be sent before it can be paid")
	case inv.Status == model.InvoiceCancelled:
		return inv, apperr.Validation("invoice", "a cancelled invoice cannot be paid")
	case !amount.IsPositive():
		return inv, apperr.Validation("amount", "must be greater than zero")
	case amount.GreaterThan(inv.BalanceDue):
		return inv, apperr.Validation("amount", "must not exceed the balance due of "+inv.BalanceDue.StringFixed(2))
	}

	inv.AmountPaid = inv.AmountPaid.Add(amount)
	inv.BalanceDue = inv.BalanceDue.Sub(amount)
	switch {
	case inv.BalanceDue.IsZero():
		inv.Status = model.InvoicePaid
	case inv.BalanceDue.LessThan(inv.TotalAmount):
		inv.Status = model.InvoicePartiallyPaid
	}
	return inv, nil
}

// DeriveInvoiceStatus projects an invoice's status from its amounts and due
// date. Draft and cancelled are only left through explicit operations; once
// sent, an invoice with nothing left to pay is paid, including a zero total.
func DeriveInvoiceStatus(inv model.Invoice, now time.Time) model.InvoiceStatus {
	switch {
	case inv.Status == model.InvoiceCancelled:
		return model.InvoiceCancelled
	case inv.Status == model.InvoiceDraft:
		return model.InvoiceDraft
	case inv.BalanceDue.IsZero():
		return model.InvoicePaid
	case inv.BalanceDue.LessThan(inv.TotalAmount):
		return model.InvoicePartiallyPaid
	case pastDue(inv.DueDate, now):
		return model.InvoiceOverdue
	default:
		return model.InvoiceSent
	}
}

// pastDue compares calendar days; an invoice due today is not overdue.
func pastDue(due, now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := due.Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).Before(today)
}
