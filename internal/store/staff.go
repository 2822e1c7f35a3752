package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

const staffColumns = `id, user_id, name, email, phone, role, is_active, created_at, updated_at`

func scanStaff(row rowScanner) (model.StaffMember, error) {
	var m model.StaffMember
	err := row.Scan(&m.ID, &m.TenantID, &m.Name, &m.Email, &m.Phone, &m.Role, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (s *Store) ListStaff(ctx context.Context, tenantID uuid.UUID, f model.StaffFilter) ([]model.StaffMember, error) {
	var out []model.StaffMember
	err := s.run(ctx, "list_staff", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `
			SELECT `+staffColumns+` FROM staff_members
			WHERE user_id = $1 AND ($2::boolean = false OR is_active)
			ORDER BY name, created_at DESC`, tenantID, f.ActiveOnly)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.StaffMember, error) {
			return scanStaff(row)
		})
		return err
	})
	return out, err
}

func (s *Store) GetStaff(ctx context.Context, tenantID, id uuid.UUID) (*model.StaffMember, error) {
	var m model.StaffMember
	err := s.run(ctx, "get_staff", func(ctx context.Context) error {
		var err error
		m, err = scanStaff(s.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff_members WHERE id = $1`, id))
		if err != nil {
			return notFoundAs("staff member", err)
		}
		return scoped("staff member", m.TenantID, tenantID)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) CreateStaff(ctx context.Context, tenantID uuid.UUID, in model.StaffMemberInput) (*model.StaffMember, error) {
	var m model.StaffMember
	err := s.run(ctx, "create_staff", func(ctx context.Context) error {
		var err error
		m, err = scanStaff(s.pool.QueryRow(ctx, `
			INSERT INTO staff_members (user_id, name, email, phone, role, is_active)
			VALUES ($1, $2, $3, $4, $5, COALESCE($6, true))
			RETURNING `+staffColumns,
			tenantID, in.Name, in.Email, in.Phone, in.Role, in.IsActive))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) UpdateStaff(ctx context.Context, tenantID, id uuid.UUID, in model.StaffMemberInput) (*model.StaffMember, error) {
	var m model.StaffMember
	err := s.inTx(ctx, "update_staff", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, "staff member", ownStaffSQL, tenantID, id); err != nil {
			return err
		}
		var err error
		m, err = scanStaff(tx.QueryRow(ctx, `
			UPDATE staff_members SET name = $2, email = $3, phone = $4, role = $5,
				is_active = COALESCE($6, is_active), updated_at = now()
			WHERE id = $1
			RETURNING `+staffColumns,
			id, in.Name, in.Email, in.Phone, in.Role, in.IsActive))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}
