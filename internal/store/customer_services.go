package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

// Customer services have no user_id; they belong to the tenant that owns
// the customer.
const customerServiceSelect = `
	SELECT cs.id, cs.customer_id, cs.service_id, sv.name, cs.status, cs.price, cs.billing_cycle,
		cs.start_date, cs.end_date, cs.notes, cs.created_at, cs.updated_at
	FROM customer_services cs
	JOIN customers c ON c.id = cs.customer_id
	JOIN services sv ON sv.id = cs.service_id`

func scanCustomerService(row rowScanner) (model.CustomerService, error) {
	var v model.CustomerService
	err := row.Scan(&v.ID, &v.CustomerID, &v.ServiceID, &v.ServiceName, &v.Status, &v.Price, &v.BillingCycle,
		&v.StartDate, &v.EndDate, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (s *Store) ListCustomerServices(ctx context.Context, tenantID uuid.UUID, f model.CustomerServiceFilter) ([]model.CustomerService, error) {
	var out []model.CustomerService
	err := s.run(ctx, "list_customer_services", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, customerServiceSelect+`
			WHERE c.user_id = $1
			  AND ($2::uuid IS NULL OR cs.customer_id = $2)
			  AND (cardinality($3::text[]) = 0 OR cs.status = ANY($3))
			ORDER BY cs.created_at DESC`,
			tenantID, f.CustomerID, statusStrings(f.Statuses))
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CustomerService, error) {
			return scanCustomerService(row)
		})
		return err
	})
	return out, err
}

func (s *Store) GetCustomerService(ctx context.Context, tenantID, id uuid.UUID) (*model.CustomerService, error) {
	var v model.CustomerService
	err := s.run(ctx, "get_customer_service", func(ctx context.Context) error {
		var owner uuid.UUID
		row := s.pool.QueryRow(ctx, `SELECT c.user_id FROM customer_services cs
			JOIN customers c ON c.id = cs.customer_id WHERE cs.id = $1`, id)
		if err := row.Scan(&owner); err != nil {
			return notFoundAs("customer service", err)
		}
		if err := scoped("customer service", owner, tenantID); err != nil {
			return err
		}
		var err error
		v, err = scanCustomerService(s.pool.QueryRow(ctx, customerServiceSelect+` WHERE cs.id = $1`, id))
		return notFoundAs("customer service", err)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateCustomerService subscribes a customer to a catalog service. Price and
// billing cycle default to the service's own.
func (s *Store) CreateCustomerService(ctx context.Context, tenantID uuid.UUID, in model.CustomerServiceInput) (*model.CustomerService, error) {
	var v model.CustomerService
	err := s.inTx(ctx, "create_customer_service", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, "customer", ownCustomerSQL, tenantID, in.CustomerID); err != nil {
			return err
		}
		if err := checkOwner(ctx, tx, "service", ownServiceSQL, tenantID, in.ServiceID); err != nil {
			return err
		}
		start := s.today()
		if in.StartDate != nil {
			start = *in.StartDate
		}
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO customer_services (customer_id, service_id, status, price, billing_cycle, start_date, end_date, notes)
			SELECT $1::uuid, sv.id, $3::text, COALESCE($4::numeric, sv.default_price),
				COALESCE(NULLIF($5::text, ''), sv.billing_cycle), $6::date, $7::date, $8::text
			FROM services sv WHERE sv.id = $2
			RETURNING id`,
			in.CustomerID, in.ServiceID, in.Status, in.Price, string(in.BillingCycle), start, in.EndDate, in.Notes,
		).Scan(&id)
		if err != nil {
			return err
		}
		v, err = scanCustomerService(tx.QueryRow(ctx, customerServiceSelect+` WHERE cs.id = $1`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) UpdateCustomerService(ctx context.Context, tenantID, id uuid.UUID, in model.CustomerServiceUpdate) (*model.CustomerService, error) {
	var v model.CustomerService
	err := s.inTx(ctx, "update_customer_service", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, "customer service", ownCustomerServiceSQL, tenantID, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE customer_services SET status = $2, price = COALESCE($3, price), end_date = $4, notes = $5,
				updated_at = now()
			WHERE id = $1`, id, in.Status, in.Price, in.EndDate, in.Notes); err != nil {
			return err
		}
		var err error
		v, err = scanCustomerService(tx.QueryRow(ctx, customerServiceSelect+` WHERE cs.id = $1`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// statusStrings converts a slice of string-kinded statuses for ANY($n).
func statusStrings[S ~string](in []S) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}
