package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/finance"
	"github.com/teresa-solution/firm-management-service/internal/model"
	"github.com/teresa-solution/firm-management-service/internal/monitoring"
)

const paymentColumns = `id, invoice_id, customer_id, amount, payment_date, payment_method, reference_number,
	notes, idempotency_key, created_at`

func scanPayment(row rowScanner) (model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.InvoiceID, &p.CustomerID, &p.Amount, &p.PaymentDate, &p.PaymentMethod,
		&p.ReferenceNumber, &p.Notes, &p.IdempotencyKey, &p.CreatedAt)
	return p, err
}

// PaymentResult is the outcome of RecordPayment. Replayed is true when the
// idempotency key matched an earlier payment and nothing was applied.
type PaymentResult struct {
	Invoice  model.Invoice `json:"invoice"`
	Payment  model.Payment `json:"payment"`
	Replayed bool          `json:"replayed"`
}

// RecordPayment applies a payment to an invoice. The invoice row stays locked
// from the balance check until the new amounts are written, so concurrent
// payments can never push the balance below zero.
func (s *Store) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, in model.PaymentInput) (*PaymentResult, error) {
	in.Amount = in.Amount.Round(2)
	var res PaymentResult
	err := s.inTx(ctx, "record_payment", func(ctx context.Context, tx pgx.Tx) error {
		inv, err := lockInvoice(ctx, tx, tenantID, invoiceID)
		if err != nil {
			return err
		}

		if in.IdempotencyKey != nil {
			prior, err := scanPayment(tx.QueryRow(ctx, `
				SELECT `+paymentColumns+` FROM payments
				WHERE invoice_id = $1 AND idempotency_key = $2`, invoiceID, *in.IdempotencyKey))
			switch {
			case err == nil:
				if !prior.Amount.Equal(in.Amount) {
					return apperr.Conflict("idempotency key " + *in.IdempotencyKey + " was used for a different amount")
				}
				res = PaymentResult{Invoice: inv, Payment: prior, Replayed: true}
				res.Invoice.Items, err = listItems(ctx, tx, invoiceID)
				return err
			case !errors.Is(err, pgx.ErrNoRows):
				return err
			}
		}

		paid, err := finance.ApplyPayment(inv, in.Amount)
		if err != nil {
			return err
		}
		res.Payment, err = scanPayment(tx.QueryRow(ctx, `
			INSERT INTO payments (invoice_id, customer_id, amount, payment_date, payment_method, reference_number,
				notes, idempotency_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+paymentColumns,
			invoiceID, inv.CustomerID, in.Amount, in.PaymentDate, in.PaymentMethod, in.ReferenceNumber, in.Notes,
			in.IdempotencyKey))
		if err != nil {
			return err
		}
		res.Invoice, err = scanInvoice(tx.QueryRow(ctx, `
			UPDATE invoices SET amount_paid = $2, balance_due = $3, status = $4, updated_at = now()
			WHERE id = $1
			RETURNING `+invoiceColumns,
			invoiceID, paid.AmountPaid, paid.BalanceDue, paid.Status))
		if err != nil {
			return err
		}
		res.Invoice.Items, err = listItems(ctx, tx, invoiceID)
		return err
	})

	if err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			monitoring.PaymentsRecorded.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}
	outcome := "applied"
	if res.Replayed {
		outcome = "replayed"
	}
	monitoring.PaymentsRecorded.WithLabelValues(outcome).Inc()
	return &res, nil
}

// ListPayments returns the payments of one invoice, oldest first.
func (s *Store) ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]model.Payment, error) {
	var out []model.Payment
	err := s.run(ctx, "list_payments", func(ctx context.Context) error {
		var owner uuid.UUID
		if err := s.pool.QueryRow(ctx, `SELECT user_id FROM invoices WHERE id = $1`, invoiceID).Scan(&owner); err != nil {
			return notFoundAs("invoice", err)
		}
		if err := scoped("invoice", owner, tenantID); err != nil {
			return err
		}
		rows, err := s.pool.Query(ctx, `
			SELECT `+paymentColumns+` FROM payments
			WHERE invoice_id = $1
			ORDER BY payment_date, created_at`, invoiceID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Payment, error) {
			return scanPayment(row)
		})
		return err
	})
	return out, err
}
