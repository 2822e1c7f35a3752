package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/finance"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

const invoiceColumns = `id, user_id, customer_id, invoice_number, invoice_date, due_date, subtotal, tax_amount,
	discount_amount, total_amount, amount_paid, balance_due, status, notes, created_at, updated_at`

func scanInvoice(row rowScanner) (model.Invoice, error) {
	var i model.Invoice
	err := row.Scan(&i.ID, &i.TenantID, &i.CustomerID, &i.InvoiceNumber, &i.InvoiceDate, &i.DueDate, &i.Subtotal,
		&i.TaxAmount, &i.DiscountAmount, &i.TotalAmount, &i.AmountPaid, &i.BalanceDue, &i.Status, &i.Notes,
		&i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const itemColumns = `id, invoice_id, customer_service_id, task_id, description, quantity, unit_price, total, created_at`

func scanItem(row rowScanner) (model.InvoiceItem, error) {
	var it model.InvoiceItem
	err := row.Scan(&it.ID, &it.InvoiceID, &it.CustomerServiceID, &it.TaskID, &it.Description, &it.Quantity,
		&it.UnitPrice, &it.Total, &it.CreatedAt)
	return it, err
}

// ListInvoices returns the newest invoices first. From and To bound
// invoice_date inclusively.
func (s *Store) ListInvoices(ctx context.Context, tenantID uuid.UUID, f model.InvoiceFilter) ([]model.Invoice, error) {
	var out []model.Invoice
	err := s.run(ctx, "list_invoices", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `
			SELECT `+invoiceColumns+` FROM invoices
			WHERE user_id = $1
			  AND (cardinality($2::text[]) = 0 OR status = ANY($2))
			  AND ($3::uuid IS NULL OR customer_id = $3)
			  AND ($4::date IS NULL OR invoice_date >= $4)
			  AND ($5::date IS NULL OR invoice_date <= $5)
			ORDER BY invoice_date DESC, created_at DESC`,
			tenantID, statusStrings(f.Statuses), f.CustomerID, f.From, f.To)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Invoice, error) {
			return scanInvoice(row)
		})
		return err
	})
	return out, err
}

// GetInvoice returns the invoice with its line items.
func (s *Store) GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := s.run(ctx, "get_invoice", func(ctx context.Context) error {
		var err error
		inv, err = scanInvoice(s.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
		if err != nil {
			return notFoundAs("invoice", err)
		}
		if err := scoped("invoice", inv.TenantID, tenantID); err != nil {
			return err
		}
		inv.Items, err = listItems(ctx, s.pool, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func listItems(ctx context.Context, q querier, invoiceID uuid.UUID) ([]model.InvoiceItem, error) {
	rows, err := q.Query(ctx, `SELECT `+itemColumns+` FROM invoice_items WHERE invoice_id = $1 ORDER BY created_at, id`, invoiceID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.InvoiceItem, error) {
		return scanItem(row)
	})
}

// CreateInvoice stores a priced invoice and its items and assigns the next
// invoice number for the invoice month.
func (s *Store) CreateInvoice(ctx context.Context, tenantID uuid.UUID, inv model.Invoice) (*model.Invoice, error) {
	var out model.Invoice
	err := s.inTx(ctx, "create_invoice", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkInvoiceRefs(ctx, tx, tenantID, inv); err != nil {
			return err
		}
		number, err := nextInvoiceNumber(ctx, tx, tenantID, inv.InvoiceDate)
		if err != nil {
			return err
		}
		out, err = scanInvoice(tx.QueryRow(ctx, `
			INSERT INTO invoices (user_id, customer_id, invoice_number, invoice_date, due_date, subtotal, tax_amount,
				discount_amount, total_amount, amount_paid, balance_due, status, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING `+invoiceColumns,
			tenantID, inv.CustomerID, number, inv.InvoiceDate, inv.DueDate, inv.Subtotal, inv.TaxAmount,
			inv.DiscountAmount, inv.TotalAmount, inv.AmountPaid, inv.BalanceDue, model.InvoiceDraft, inv.Notes))
		if err != nil {
			return err
		}
		out.Items, err = insertItems(ctx, tx, out.ID, inv.Items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDraftInvoice replaces the amounts and items of a draft. Issued
// invoices are immutable apart from payments.
func (s *Store) UpdateDraftInvoice(ctx context.Context, tenantID, id uuid.UUID, inv model.Invoice) (*model.Invoice, error) {
	var out model.Invoice
	err := s.inTx(ctx, "update_invoice", func(ctx context.Context, tx pgx.Tx) error {
		current, err := lockInvoice(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if current.Status != model.InvoiceDraft {
			return apperr.Conflict("only draft invoices can be edited; " + current.InvoiceNumber + " is " + string(current.Status))
		}
		if err := checkInvoiceRefs(ctx, tx, tenantID, inv); err != nil {
			return err
		}
		out, err = scanInvoice(tx.QueryRow(ctx, `
			UPDATE invoices SET customer_id = $2, invoice_date = $3, due_date = $4, subtotal = $5, tax_amount = $6,
				discount_amount = $7, total_amount = $8, amount_paid = 0, balance_due = $8, notes = $9,
				updated_at = now()
			WHERE id = $1
			RETURNING `+invoiceColumns,
			id, inv.CustomerID, inv.InvoiceDate, inv.DueDate, inv.Subtotal, inv.TaxAmount, inv.DiscountAmount,
			inv.TotalAmount, inv.Notes))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
			return err
		}
		out.Items, err = insertItems(ctx, tx, id, inv.Items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func checkInvoiceRefs(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, inv model.Invoice) error {
	if err := checkOwner(ctx, tx, "customer", ownCustomerSQL, tenantID, inv.CustomerID); err != nil {
		return err
	}
	for _, it := range inv.Items {
		if err := checkOptionalOwner(ctx, tx, "customer service", ownCustomerServiceSQL, tenantID, it.CustomerServiceID); err != nil {
			return err
		}
		if err := checkOptionalOwner(ctx, tx, "task", ownTaskSQL, tenantID, it.TaskID); err != nil {
			return err
		}
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID, items []model.InvoiceItem) ([]model.InvoiceItem, error) {
	out := make([]model.InvoiceItem, 0, len(items))
	for _, it := range items {
		saved, err := scanItem(tx.QueryRow(ctx, `
			INSERT INTO invoice_items (invoice_id, customer_service_id, task_id, description, quantity, unit_price, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+itemColumns,
			invoiceID, it.CustomerServiceID, it.TaskID, it.Description, it.Quantity, it.UnitPrice, it.Total))
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

func lockInvoice(ctx context.Context, tx pgx.Tx, tenantID, id uuid.UUID) (model.Invoice, error) {
	inv, err := scanInvoice(tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return inv, notFoundAs("invoice", err)
	}
	return inv, scoped("invoice", inv.TenantID, tenantID)
}

// MarkInvoiceSent issues a draft. An invoice issued after its due date goes
// straight to overdue; one with a zero total is paid on issue.
func (s *Store) MarkInvoiceSent(ctx context.Context, tenantID, id uuid.UUID) (*model.Invoice, error) {
	return s.transitionInvoice(ctx, "send_invoice", tenantID, id, func(inv model.Invoice) (model.InvoiceStatus, error) {
		if inv.Status != model.InvoiceDraft {
			return "", apperr.Conflict("invoice " + inv.InvoiceNumber + " has already been issued")
		}
		inv.Status = model.InvoiceSent
		return finance.DeriveInvoiceStatus(inv, s.now()), nil
	})
}

// CancelInvoice voids an invoice that has not received any payment.
func (s *Store) CancelInvoice(ctx context.Context, tenantID, id uuid.UUID) (*model.Invoice, error) {
	return s.transitionInvoice(ctx, "cancel_invoice", tenantID, id, func(inv model.Invoice) (model.InvoiceStatus, error) {
		switch {
		case inv.Status == model.InvoiceCancelled:
			return "", apperr.Conflict("invoice " + inv.InvoiceNumber + " is already cancelled")
		case inv.AmountPaid.IsPositive():
			return "", apperr.Conflict("invoice " + inv.InvoiceNumber + " has payments and cannot be cancelled")
		}
		return model.InvoiceCancelled, nil
	})
}

func (s *Store) transitionInvoice(ctx context.Context, op string, tenantID, id uuid.UUID,
	next func(model.Invoice) (model.InvoiceStatus, error)) (*model.Invoice, error) {
	var out model.Invoice
	err := s.inTx(ctx, op, func(ctx context.Context, tx pgx.Tx) error {
		inv, err := lockInvoice(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		status, err := next(inv)
		if err != nil {
			return err
		}
		out, err = scanInvoice(tx.QueryRow(ctx, `
			UPDATE invoices SET status = $2, updated_at = now() WHERE id = $1
			RETURNING `+invoiceColumns, id, status))
		if err != nil {
			return err
		}
		out.Items, err = listItems(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// OverdueUpdate is one invoice moved by SweepOverdue.
type OverdueUpdate struct {
	InvoiceID     uuid.UUID
	TenantID      uuid.UUID
	InvoiceNumber string
}

// SweepOverdue re-derives the status of sent invoices whose due date has
// passed and persists the ones that became overdue. It works across
// tenants and processes at most limit rows per call; rows locked by a
// concurrent payment are skipped and picked up next time.
func (s *Store) SweepOverdue(ctx context.Context, now time.Time, limit int) ([]OverdueUpdate, error) {
	var out []OverdueUpdate
	err := s.inTx(ctx, "sweep_overdue", func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT `+invoiceColumns+` FROM invoices
			WHERE status = $1 AND due_date < $2::date
			ORDER BY due_date
			LIMIT $3
			FOR UPDATE SKIP LOCKED`, model.InvoiceSent, now, limit)
		if err != nil {
			return err
		}
		candidates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Invoice, error) {
			return scanInvoice(row)
		})
		if err != nil {
			return err
		}
		for _, inv := range candidates {
			if finance.DeriveInvoiceStatus(inv, now) != model.InvoiceOverdue {
				continue
			}
			if _, err := tx.Exec(ctx, `UPDATE invoices SET status = $2, updated_at = now() WHERE id = $1`,
				inv.ID, model.InvoiceOverdue); err != nil {
				return err
			}
			out = append(out, OverdueUpdate{InvoiceID: inv.ID, TenantID: inv.TenantID, InvoiceNumber: inv.InvoiceNumber})
		}
		return nil
	})
	return out, err
}
