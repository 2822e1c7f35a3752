package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

// vatReturnSelect joins the optional figures row so a return is read in one
// round trip.
const vatReturnSelect = `
	SELECT r.id, r.user_id, r.customer_id, r.task_id, r.period_type, r.period_year, r.period_number,
		r.period_start_date, r.period_end_date, r.due_date, r.status, r.filed_date, r.created_at, r.updated_at,
		d.id, d.total_sales, d.exempt_sales, d.taxable_sales, d.output_tax, d.total_purchases,
		d.exempt_purchases, d.taxable_purchases, d.input_tax, d.adjustments, d.net_vat_payable,
		d.total_vat_due, d.notes, d.created_at, d.updated_at
	FROM vat_returns r
	LEFT JOIN vat_return_data d ON d.vat_return_id = r.id`

func scanVATReturn(row rowScanner) (model.VATReturn, error) {
	var (
		r       model.VATReturn
		dataID  *uuid.UUID
		figures [11]*decimal.Decimal
		notes   *string
		created *time.Time
		updated *time.Time
	)
	err := row.Scan(&r.ID, &r.TenantID, &r.CustomerID, &r.TaskID, &r.PeriodType, &r.PeriodYear, &r.PeriodNumber,
		&r.PeriodStartDate, &r.PeriodEndDate, &r.DueDate, &r.Status, &r.FiledDate, &r.CreatedAt, &r.UpdatedAt,
		&dataID, &figures[0], &figures[1], &figures[2], &figures[3], &figures[4], &figures[5], &figures[6],
		&figures[7], &figures[8], &figures[9], &figures[10], &notes, &created, &updated)
	if err != nil || dataID == nil {
		return r, err
	}
	r.Data = &model.VATReturnData{
		ID:               *dataID,
		VATReturnID:      r.ID,
		TotalSales:       *figures[0],
		ExemptSales:      *figures[1],
		TaxableSales:     *figures[2],
		OutputTax:        *figures[3],
		TotalPurchases:   *figures[4],
		ExemptPurchases:  *figures[5],
		TaxablePurchases: *figures[6],
		InputTax:         *figures[7],
		Adjustments:      *figures[8],
		NetVATPayable:    *figures[9],
		TotalVATDue:      *figures[10],
		Notes:            notes,
		CreatedAt:        *created,
		UpdatedAt:        *updated,
	}
	return r, nil
}

// ListVATReturns returns the newest periods first.
func (s *Store) ListVATReturns(ctx context.Context, tenantID uuid.UUID, f model.VATReturnFilter) ([]model.VATReturn, error) {
	var out []model.VATReturn
	err := s.run(ctx, "list_vat_returns", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, vatReturnSelect+`
			WHERE r.user_id = $1
			  AND ($2::uuid IS NULL OR r.customer_id = $2)
			  AND (cardinality($3::text[]) = 0 OR r.status = ANY($3))
			ORDER BY r.period_year DESC, r.period_number DESC, r.created_at DESC`,
			tenantID, f.CustomerID, statusStrings(f.Statuses))
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.VATReturn, error) {
			return scanVATReturn(row)
		})
		return err
	})
	return out, err
}

func (s *Store) GetVATReturn(ctx context.Context, tenantID, id uuid.UUID) (*model.VATReturn, error) {
	var r model.VATReturn
	err := s.run(ctx, "get_vat_return", func(ctx context.Context) error {
		var err error
		r, err = scanVATReturn(s.pool.QueryRow(ctx, vatReturnSelect+` WHERE r.id = $1`, id))
		if err != nil {
			return notFoundAs("VAT return", err)
		}
		return scoped("VAT return", r.TenantID, tenantID)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateVATReturn opens a return in draft. A second return for the same
// customer and period is a Conflict.
func (s *Store) CreateVATReturn(ctx context.Context, tenantID uuid.UUID, in model.VATReturnInput) (*model.VATReturn, error) {
	var r model.VATReturn
	err := s.inTx(ctx, "create_vat_return", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, "customer", ownCustomerSQL, tenantID, in.CustomerID); err != nil {
			return err
		}
		if err := checkOptionalOwner(ctx, tx, "task", ownTaskSQL, tenantID, in.TaskID); err != nil {
			return err
		}
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO vat_returns (user_id, customer_id, task_id, period_type, period_year, period_number,
				period_start_date, period_end_date, due_date, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`,
			tenantID, in.CustomerID, in.TaskID, in.PeriodType, in.PeriodYear, in.PeriodNumber,
			in.PeriodStartDate, in.PeriodEndDate, in.DueDate, model.VATDraft).Scan(&id)
		if err != nil {
			return err
		}
		r, err = scanVATReturn(tx.QueryRow(ctx, vatReturnSelect+` WHERE r.id = $1`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func lockVATReturn(ctx context.Context, tx pgx.Tx, tenantID, id uuid.UUID) (model.VATReturn, error) {
	r, err := scanVATReturn(tx.QueryRow(ctx, vatReturnSelect+` WHERE r.id = $1 FOR UPDATE OF r`, id))
	if err != nil {
		return r, notFoundAs("VAT return", err)
	}
	return r, scoped("VAT return", r.TenantID, tenantID)
}

// SaveVATData stores the computed figures of a return, replacing earlier
// ones. Figures of submitted or filed returns are frozen.
func (s *Store) SaveVATData(ctx context.Context, tenantID, returnID uuid.UUID, d model.VATReturnData) (*model.VATReturn, error) {
	var r model.VATReturn
	err := s.inTx(ctx, "save_vat_data", func(ctx context.Context, tx pgx.Tx) error {
		current, err := lockVATReturn(ctx, tx, tenantID, returnID)
		if err != nil {
			return err
		}
		if current.Status.Locked() {
			return apperr.Conflict("figures of a " + string(current.Status) + " return cannot change")
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO vat_return_data (vat_return_id, total_sales, exempt_sales, taxable_sales, output_tax,
				total_purchases, exempt_purchases, taxable_purchases, input_tax, adjustments, net_vat_payable,
				total_vat_due, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (vat_return_id) DO UPDATE SET
				total_sales = EXCLUDED.total_sales, exempt_sales = EXCLUDED.exempt_sales,
				taxable_sales = EXCLUDED.taxable_sales, output_tax = EXCLUDED.output_tax,
				total_purchases = EXCLUDED.total_purchases, exempt_purchases = EXCLUDED.exempt_purchases,
				taxable_purchases = EXCLUDED.taxable_purchases, input_tax = EXCLUDED.input_tax,
				adjustments = EXCLUDED.adjustments, net_vat_payable = EXCLUDED.net_vat_payable,
				total_vat_due = EXCLUDED.total_vat_due, notes = EXCLUDED.notes, updated_at = now()`,
			returnID, d.TotalSales, d.ExemptSales, d.TaxableSales, d.OutputTax, d.TotalPurchases, d.ExemptPurchases,
			d.TaxablePurchases, d.InputTax, d.Adjustments, d.NetVATPayable, d.TotalVATDue, d.Notes); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE vat_returns SET updated_at = now() WHERE id = $1`, returnID); err != nil {
			return err
		}
		r, err = scanVATReturn(tx.QueryRow(ctx, vatReturnSelect+` WHERE r.id = $1`, returnID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ChangeVATStatus moves a return along draft, in_progress, review,
// submitted, filed. Moving back needs a reason. Every move is recorded in
// vat_return_status_changes; filing stamps filed_date and un-filing clears it.
func (s *Store) ChangeVATStatus(ctx context.Context, tenantID, id uuid.UUID, in model.VATStatusUpdate) (*model.VATReturn, error) {
	var r model.VATReturn
	err := s.inTx(ctx, "change_vat_status", func(ctx context.Context, tx pgx.Tx) error {
		current, err := lockVATReturn(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if _, err := model.CheckVATTransition(current.Status, in.Status, in.Reason); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE vat_returns SET status = $2,
				filed_date = CASE WHEN $2::text = 'filed' THEN $3::date ELSE NULL END,
				updated_at = now()
			WHERE id = $1`, id, in.Status, s.today()); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO vat_return_status_changes (vat_return_id, from_status, to_status, reason, changed_by)
			VALUES ($1, $2, $3, $4, $5)`, id, current.Status, in.Status, in.Reason, tenantID); err != nil {
			return err
		}
		r, err = scanVATReturn(tx.QueryRow(ctx, vatReturnSelect+` WHERE r.id = $1`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListVATStatusChanges returns the audit trail of a return, oldest first.
func (s *Store) ListVATStatusChanges(ctx context.Context, tenantID, returnID uuid.UUID) ([]model.VATStatusChange, error) {
	var out []model.VATStatusChange
	err := s.run(ctx, "list_vat_status_changes", func(ctx context.Context) error {
		var owner uuid.UUID
		if err := s.pool.QueryRow(ctx, `SELECT user_id FROM vat_returns WHERE id = $1`, returnID).Scan(&owner); err != nil {
			return notFoundAs("VAT return", err)
		}
		if err := scoped("VAT return", owner, tenantID); err != nil {
			return err
		}
		rows, err := s.pool.Query(ctx, `
			SELECT id, vat_return_id, from_status, to_status, reason, changed_by, created_at
			FROM vat_return_status_changes WHERE vat_return_id = $1 ORDER BY created_at`, returnID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.VATStatusChange, error) {
			var c model.VATStatusChange
			err := row.Scan(&c.ID, &c.VATReturnID, &c.FromStatus, &c.ToStatus, &c.Reason, &c.ChangedBy, &c.CreatedAt)
			return c, err
		})
		return err
	})
	return out, err
}
