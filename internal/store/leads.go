package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/model"
	"github.com/teresa-solution/firm-management-service/internal/monitoring"
)

const leadColumns = `id, user_id, unique_code, name, company_name, email, phone, mobile, address, status,
	source, notes, converted_to_customer_id, converted_at, created_at, updated_at`

func scanLead(row rowScanner) (model.Lead, error) {
	var l model.Lead
	err := row.Scan(&l.ID, &l.TenantID, &l.UniqueCode, &l.Name, &l.CompanyName, &l.Email, &l.Phone, &l.Mobile,
		&l.Address, &l.Status, &l.Source, &l.Notes, &l.ConvertedToCustomerID, &l.ConvertedAt, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (s *Store) ListLeads(ctx context.Context, tenantID uuid.UUID, f model.LeadFilter) ([]model.Lead, error) {
	var out []model.Lead
	err := s.run(ctx, "list_leads", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `
			SELECT `+leadColumns+` FROM leads
			WHERE user_id = $1
			  AND (cardinality($2::text[]) = 0 OR status = ANY($2))
			  AND ($3 = '' OR name ILIKE $4 OR unique_code ILIKE $4 OR company_name ILIKE $4 OR email ILIKE $4)
			ORDER BY created_at DESC`,
			tenantID, statusStrings(f.Statuses), strings.TrimSpace(f.Search), likePattern(f.Search))
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Lead, error) {
			return scanLead(row)
		})
		return err
	})
	return out, err
}

func (s *Store) GetLead(ctx context.Context, tenantID, id uuid.UUID) (*model.Lead, error) {
	var l model.Lead
	err := s.run(ctx, "get_lead", func(ctx context.Context) error {
		var err error
		l, err = scanLead(s.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
		if err != nil {
			return notFoundAs("lead", err)
		}
		return scoped("lead", l.TenantID, tenantID)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLead inserts the lead and its services of interest together.
func (s *Store) CreateLead(ctx context.Context, tenantID uuid.UUID, in model.LeadInput) (*model.Lead, error) {
	var l model.Lead
	err := s.inTx(ctx, "create_lead", func(ctx context.Context, tx pgx.Tx) error {
		code, err := nextCode(ctx, tx, tenantID, leadPrefix)
		if err != nil {
			return err
		}
		l, err = scanLead(tx.QueryRow(ctx, `
			INSERT INTO leads (user_id, unique_code, name, company_name, email, phone, mobile, address, status, source, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING `+leadColumns,
			tenantID, code, in.Name, in.CompanyName, in.Email, in.Phone, in.Mobile, in.Address, in.Status, in.Source, in.Notes))
		if err != nil {
			return err
		}
		return setLeadServices(ctx, tx, tenantID, l.ID, in.ServiceIDs)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLead replaces the lead's fields. A nil ServiceIDs keeps the current
// services; an empty one clears them. Status changes are logged as activity.
func (s *Store) UpdateLead(ctx context.Context, tenantID, id uuid.UUID, in model.LeadInput) (*model.Lead, error) {
	var l model.Lead
	err := s.inTx(ctx, "update_lead", func(ctx context.Context, tx pgx.Tx) error {
		current, err := lockLead(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if current.Status == model.LeadConverted {
			return apperr.Conflict("a converted lead cannot be edited")
		}
		l, err = scanLead(tx.QueryRow(ctx, `
			UPDATE leads SET name = $2, company_name = $3, email = $4, phone = $5, mobile = $6, address = $7,
				status = $8, source = $9, notes = $10, updated_at = now()
			WHERE id = $1
			RETURNING `+leadColumns,
			id, in.Name, in.CompanyName, in.Email, in.Phone, in.Mobile, in.Address, in.Status, in.Source, in.Notes))
		if err != nil {
			return err
		}
		if current.Status != in.Status {
			desc := fmt.Sprintf("Status changed from %s to %s", current.Status, in.Status)
			if _, err := insertActivity(ctx, tx, id, model.ActivityStatusChange, desc, tenantID); err != nil {
				return err
			}
		}
		if in.ServiceIDs == nil {
			return nil
		}
		return setLeadServices(ctx, tx, tenantID, id, in.ServiceIDs)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ConvertLead turns a lead into a customer in one transaction: the customer
// is created from the lead's contact details, the lead is stamped converted
// and the conversion is logged. Converted and lost leads are rejected.
func (s *Store) ConvertLead(ctx context.Context, tenantID, leadID uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := s.inTx(ctx, "convert_lead", func(ctx context.Context, tx pgx.Tx) error {
		lead, err := lockLead(ctx, tx, tenantID, leadID)
		if err != nil {
			return err
		}
		switch lead.Status {
		case model.LeadConverted:
			return apperr.Conflict("lead " + lead.UniqueCode + " is already converted")
		case model.LeadLost:
			return apperr.Conflict("lead " + lead.UniqueCode + " is lost and cannot be converted")
		}

		c, err = s.insertCustomer(ctx, tx, tenantID, model.CustomerInput{
			Name:        lead.Name,
			CompanyName: lead.CompanyName,
			Email:       lead.Email,
			Phone:       lead.Phone,
			Mobile:      lead.Mobile,
			Address:     lead.Address,
			Notes:       lead.Notes,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE leads SET status = $2, converted_to_customer_id = $3, converted_at = now(), updated_at = now()
			WHERE id = $1`, leadID, model.LeadConverted, c.ID); err != nil {
			return err
		}
		desc := fmt.Sprintf("Converted to customer %s", c.UniqueCode)
		_, err = insertActivity(ctx, tx, leadID, model.ActivityStatusChange, desc, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	monitoring.LeadsConverted.Inc()
	return &c, nil
}

func lockLead(ctx context.Context, tx pgx.Tx, tenantID, id uuid.UUID) (model.Lead, error) {
	l, err := scanLead(tx.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return l, notFoundAs("lead", err)
	}
	return l, scoped("lead", l.TenantID, tenantID)
}

// setLeadServices makes the lead's services exactly serviceIDs.
func setLeadServices(ctx context.Context, tx pgx.Tx, tenantID, leadID uuid.UUID, serviceIDs []uuid.UUID) error {
	if serviceIDs == nil {
		serviceIDs = []uuid.UUID{}
	}
	for _, id := range serviceIDs {
		if err := checkOwner(ctx, tx, "service", ownServiceSQL, tenantID, id); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM lead_services WHERE lead_id = $1 AND NOT (service_id = ANY($2::uuid[]))`,
		leadID, serviceIDs); err != nil {
		return err
	}
	for _, id := range serviceIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_services (lead_id, service_id) VALUES ($1, $2)
			ON CONFLICT (lead_id, service_id) DO NOTHING`, leadID, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListLeadServices(ctx context.Context, tenantID, leadID uuid.UUID) ([]model.LeadService, error) {
	var out []model.LeadService
	err := s.run(ctx, "list_lead_services", func(ctx context.Context) error {
		if err := s.leadVisible(ctx, tenantID, leadID); err != nil {
			return err
		}
		rows, err := s.pool.Query(ctx, `
			SELECT id, lead_id, service_id, notes, created_at FROM lead_services
			WHERE lead_id = $1 ORDER BY created_at`, leadID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.LeadService, error) {
			var v model.LeadService
			err := row.Scan(&v.ID, &v.LeadID, &v.ServiceID, &v.Notes, &v.CreatedAt)
			return v, err
		})
		return err
	})
	return out, err
}

const activityColumns = `id, lead_id, activity_type, description, created_by, created_at`

func scanActivity(row rowScanner) (model.LeadActivity, error) {
	var a model.LeadActivity
	err := row.Scan(&a.ID, &a.LeadID, &a.ActivityType, &a.Description, &a.CreatedBy, &a.CreatedAt)
	return a, err
}

func insertActivity(ctx context.Context, q querier, leadID uuid.UUID, kind model.ActivityType, desc string, by uuid.UUID) (model.LeadActivity, error) {
	return scanActivity(q.QueryRow(ctx, `
		INSERT INTO lead_activities (lead_id, activity_type, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+activityColumns, leadID, kind, desc, by))
}

func (s *Store) AddLeadActivity(ctx context.Context, tenantID, leadID uuid.UUID, in model.LeadActivityInput) (*model.LeadActivity, error) {
	var a model.LeadActivity
	err := s.inTx(ctx, "add_lead_activity", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, "lead", ownLeadSQL, tenantID, leadID); err != nil {
			return err
		}
		var err error
		a, err = insertActivity(ctx, tx, leadID, in.ActivityType, in.Description, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListLeadActivities returns the lead's history, newest first.
func (s *Store) ListLeadActivities(ctx context.Context, tenantID, leadID uuid.UUID) ([]model.LeadActivity, error) {
	var out []model.LeadActivity
	err := s.run(ctx, "list_lead_activities", func(ctx context.Context) error {
		if err := s.leadVisible(ctx, tenantID, leadID); err != nil {
			return err
		}
		rows, err := s.pool.Query(ctx, `
			SELECT `+activityColumns+` FROM lead_activities
			WHERE lead_id = $1 ORDER BY created_at DESC`, leadID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.LeadActivity, error) {
			return scanActivity(row)
		})
		return err
	})
	return out, err
}

// leadVisible checks ownership without taking a lock.
func (s *Store) leadVisible(ctx context.Context, tenantID, leadID uuid.UUID) error {
	var owner uuid.UUID
	if err := s.pool.QueryRow(ctx, `SELECT user_id FROM leads WHERE id = $1`, leadID).Scan(&owner); err != nil {
		return notFoundAs("lead", err)
	}
	return scoped("lead", owner, tenantID)
}
