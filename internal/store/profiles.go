package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

const profileColumns = `id, company_name, company_logo_url, email, full_name, phone, address,
	subscription_status, subscription_plan, created_at, updated_at`

func scanProfile(row rowScanner) (model.TenantProfile, error) {
	var p model.TenantProfile
	err := row.Scan(&p.ID, &p.CompanyName, &p.CompanyLogoURL, &p.Email, &p.FullName, &p.Phone, &p.Address,
		&p.SubscriptionStatus, &p.SubscriptionPlan, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) GetProfile(ctx context.Context, tenantID uuid.UUID) (*model.TenantProfile, error) {
	var p model.TenantProfile
	err := s.run(ctx, "get_profile", func(ctx context.Context) error {
		var err error
		p, err = scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE id = $1`, tenantID))
		return notFoundAs("profile", err)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile registers the tenant's company. New tenants start on a trial.
func (s *Store) CreateProfile(ctx context.Context, tenantID uuid.UUID, in model.TenantProfileInput) (*model.TenantProfile, error) {
	var p model.TenantProfile
	err := s.run(ctx, "create_profile", func(ctx context.Context) error {
		var err error
		p, err = scanProfile(s.pool.QueryRow(ctx, `
			INSERT INTO user_profiles (id, company_name, company_logo_url, email, full_name, phone, address,
				subscription_status, subscription_plan)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+profileColumns,
			tenantID, in.CompanyName, in.CompanyLogoURL, in.Email, in.FullName, in.Phone, in.Address,
			model.SubscriptionTrial, in.SubscriptionPlan))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile replaces the company details. Subscription status is managed
// by billing and is left untouched.
func (s *Store) UpdateProfile(ctx context.Context, tenantID uuid.UUID, in model.TenantProfileInput) (*model.TenantProfile, error) {
	var p model.TenantProfile
	err := s.run(ctx, "update_profile", func(ctx context.Context) error {
		var err error
		p, err = scanProfile(s.pool.QueryRow(ctx, `
			UPDATE user_profiles SET company_name = $2, company_logo_url = $3, email = $4, full_name = $5,
				phone = $6, address = $7, subscription_plan = $8, updated_at = now()
			WHERE id = $1
			RETURNING `+profileColumns,
			tenantID, in.CompanyName, in.CompanyLogoURL, in.Email, in.FullName, in.Phone, in.Address,
			in.SubscriptionPlan))
		return notFoundAs("profile", err)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetSubscriptionStatus is used by operators to suspend or reinstate a tenant.
func (s *Store) SetSubscriptionStatus(ctx context.Context, tenantID uuid.UUID, status model.SubscriptionStatus) error {
	return s.run(ctx, "set_subscription_status", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx,
			`UPDATE user_profiles SET subscription_status = $2, updated_at = now() WHERE id = $1`, tenantID, status)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("profile")
		}
		return nil
	})
}
