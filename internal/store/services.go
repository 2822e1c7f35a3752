package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

const serviceColumns = `id, user_id, name, description, default_price, billing_cycle, is_active, created_at, updated_at`

func scanService(row rowScanner) (model.Service, error) {
	var v model.Service
	err := row.Scan(&v.ID, &v.TenantID, &v.Name, &v.Description, &v.DefaultPrice, &v.BillingCycle,
		&v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (s *Store) ListServices(ctx context.Context, tenantID uuid.UUID, f model.ServiceFilter) ([]model.Service, error) {
	var out []model.Service
	err := s.run(ctx, "list_services", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `
			SELECT `+serviceColumns+` FROM services
			WHERE user_id = $1 AND ($2::boolean = false OR is_active)
			ORDER BY created_at DESC`, tenantID, f.ActiveOnly)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Service, error) {
			return scanService(row)
		})
		return err
	})
	return out, err
}

func (s *Store) GetService(ctx context.Context, tenantID, id uuid.UUID) (*model.Service, error) {
	var v model.Service
	err := s.run(ctx, "get_service", func(ctx context.Context) error {
		var err error
		v, err = scanService(s.pool.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
		if err != nil {
			return notFoundAs("service", err)
		}
		return scoped("service", v.TenantID, tenantID)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) CreateService(ctx context.Context, tenantID uuid.UUID, in model.ServiceInput) (*model.Service, error) {
	var v model.Service
	err := s.run(ctx, "create_service", func(ctx context.Context) error {
		var err error
		v, err = scanService(s.pool.QueryRow(ctx, `
			INSERT INTO services (user_id, name, description, default_price, billing_cycle, is_active)
			VALUES ($1, $2, $3, $4, $5, COALESCE($6, true))
			RETURNING `+serviceColumns,
			tenantID, in.Name, in.Description, in.DefaultPrice, in.BillingCycle, in.IsActive))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) UpdateService(ctx context.Context, tenantID, id uuid.UUID, in model.ServiceInput) (*model.Service, error) {
	var v model.Service
	err := s.inTx(ctx, "update_service", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, "service", ownServiceSQL, tenantID, id); err != nil {
			return err
		}
		var err error
		v, err = scanService(tx.QueryRow(ctx, `
			UPDATE services SET name = $2, description = $3, default_price = $4, billing_cycle = $5,
				is_active = COALESCE($6, is_active), updated_at = now()
			WHERE id = $1
			RETURNING `+serviceColumns,
			id, in.Name, in.Description, in.DefaultPrice, in.BillingCycle, in.IsActive))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}
