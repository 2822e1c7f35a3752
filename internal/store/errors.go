package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// conflictMessages names the unique constraints callers can trip.
var conflictMessages = map[string]string{
	"user_profiles_pkey":               "profile already exists",
	"customers_user_code_key":          "customer code already in use",
	"leads_user_code_key":              "lead code already in use",
	"lead_services_lead_service_key":   "service already linked to lead",
	"task_assignments_task_staff_key":  "staff member already assigned to task",
	"vat_returns_period_key":           "a VAT return already exists for this customer and period",
	"invoices_user_number_key":         "invoice number already in use",
	"payments_invoice_idempotency_key": "payment with this idempotency key already recorded",
}

// mapErr turns driver and context errors into apperr kinds. Errors that
// already carry a kind pass through unchanged.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return apperr.Timeout(op, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("record")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			msg, ok := conflictMessages[pgErr.ConstraintName]
			if !ok {
				msg = "duplicate " + pgErr.ConstraintName
			}
			return &apperr.Error{Kind: apperr.KindConflict, Message: msg, Err: err}
		case pgForeignKeyViolation:
			return &apperr.Error{Kind: apperr.KindNotFound, Message: "referenced record not found", Err: err}
		case pgCheckViolation:
			return &apperr.Error{
				Kind:    apperr.KindValidation,
				Message: "violates " + pgErr.ConstraintName,
				Fields:  []apperr.FieldError{{Field: "request", Code: "check_violation", Message: pgErr.ConstraintName}},
				Err:     err,
			}
		}
	}
	return apperr.Internal(op, err)
}

// Ownership probes. Each returns the owning tenant of the row with id $1 and
// locks it for the rest of the transaction.
const (
	ownCustomerSQL        = `SELECT user_id FROM customers WHERE id = $1 FOR UPDATE`
	ownLeadSQL            = `SELECT user_id FROM leads WHERE id = $1 FOR UPDATE`
	ownServiceSQL         = `SELECT user_id FROM services WHERE id = $1 FOR UPDATE`
	ownStaffSQL           = `SELECT user_id FROM staff_members WHERE id = $1 FOR UPDATE`
	ownTaskSQL            = `SELECT user_id FROM tasks WHERE id = $1 FOR UPDATE`
	ownVATReturnSQL       = `SELECT user_id FROM vat_returns WHERE id = $1 FOR UPDATE`
	ownInvoiceSQL         = `SELECT user_id FROM invoices WHERE id = $1 FOR UPDATE`
	ownCustomerServiceSQL = `
		SELECT c.user_id FROM customer_services cs
		JOIN customers c ON c.id = cs.customer_id
		WHERE cs.id = $1 FOR UPDATE OF cs`
	ownAssignmentSQL = `
		SELECT t.user_id FROM task_assignments ta
		JOIN tasks t ON t.id = ta.task_id
		WHERE ta.id = $1 FOR UPDATE OF ta`
)

// checkOwner locks a row and verifies it belongs to tenantID. A missing row
// is NotFound; a row of another tenant is Unauthorized.
func checkOwner(ctx context.Context, q querier, entity, query string, tenantID, id uuid.UUID) error {
	var owner uuid.UUID
	err := q.QueryRow(ctx, query, id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity)
	}
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", entity, err)
	}
	if owner != tenantID {
		return apperr.Unauthorized(entity)
	}
	return nil
}

// checkOptionalOwner is checkOwner for nullable references.
func checkOptionalOwner(ctx context.Context, q querier, entity, query string, tenantID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	return checkOwner(ctx, q, entity, query, tenantID, *id)
}

// notFoundAs replaces pgx.ErrNoRows with a NotFound for entity.
func notFoundAs(entity string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity)
	}
	return err
}

// scoped rejects rows read by id that belong to another tenant.
func scoped(entity string, owner, tenantID uuid.UUID) error {
	if owner != tenantID {
		return apperr.Unauthorized(entity)
	}
	return nil
}
