package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

const customerColumns = `id, user_id, unique_code, name, company_name, email, phone, mobile, address,
	tax_registration_number_enc, tax_registration_number_iv, is_active, notes, created_at, updated_at`

func (s *Store) scanCustomer(row rowScanner) (model.Customer, error) {
	var (
		c       model.Customer
		enc, iv []byte
	)
	err := row.Scan(&c.ID, &c.TenantID, &c.UniqueCode, &c.Name, &c.CompanyName, &c.Email, &c.Phone, &c.Mobile,
		&c.Address, &enc, &iv, &c.IsActive, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.TaxRegistrationNumber, err = s.cipher.DecryptOptional(enc, iv)
	if err != nil {
		return c, fmt.Errorf("failed to decrypt tax registration number of %s: %w", c.UniqueCode, err)
	}
	return c, nil
}

// likePattern turns free text into an ILIKE pattern matching it anywhere.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(search)) + "%"
}

func (s *Store) ListCustomers(ctx context.Context, tenantID uuid.UUID, f model.CustomerFilter) ([]model.Customer, error) {
	var out []model.Customer
	err := s.run(ctx, "list_customers", func(ctx context.Context) error {
		rows, err := s.pool.Query(ctx, `
			SELECT `+customerColumns+` FROM customers
			WHERE user_id = $1
			  AND ($2::boolean = false OR is_active)
			  AND ($3 = '' OR name ILIKE $4 OR unique_code ILIKE $4 OR company_name ILIKE $4 OR email ILIKE $4)
			ORDER BY created_at DESC`,
			tenantID, f.ActiveOnly, strings.TrimSpace(f.Search), likePattern(f.Search))
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Customer, error) {
			return s.scanCustomer(row)
		})
		return err
	})
	return out, err
}

func (s *Store) GetCustomer(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := s.run(ctx, "get_customer", func(ctx context.Context) error {
		var err error
		c, err = s.scanCustomer(s.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
		if err != nil {
			return notFoundAs("customer", err)
		}
		return scoped("customer", c.TenantID, tenantID)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, tenantID uuid.UUID, in model.CustomerInput) (*model.Customer, error) {
	var c model.Customer
	err := s.inTx(ctx, "create_customer", func(ctx context.Context, tx pgx.Tx) error {
		var err error
		c, err = s.insertCustomer(ctx, tx, tenantID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// insertCustomer allocates the next customer code and inserts the row. It
// runs inside the caller's transaction so a failed insert also releases the
// code.
func (s *Store) insertCustomer(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, in model.CustomerInput) (model.Customer, error) {
	code, err := nextCode(ctx, tx, tenantID, customerPrefix)
	if err != nil {
		return model.Customer{}, err
	}
	enc, iv, err := s.cipher.EncryptOptional(in.TaxRegistrationNumber)
	if err != nil {
		return model.Customer{}, fmt.Errorf("failed to encrypt tax registration number: %w", err)
	}
	return s.scanCustomer(tx.QueryRow(ctx, `
		INSERT INTO customers (user_id, unique_code, name, company_name, email, phone, mobile, address,
			tax_registration_number_enc, tax_registration_number_iv, is_active, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, true), $12)
		RETURNING `+customerColumns,
		tenantID, code, in.Name, in.CompanyName, in.Email, in.Phone, in.Mobile, in.Address,
		enc, iv, in.IsActive, in.Notes))
}

// UpdateCustomer replaces the editable fields. The unique code never changes.
func (s *Store) UpdateCustomer(ctx context.Context, tenantID, id uuid.UUID, in model.CustomerInput) (*model.Customer, error) {
	var c model.Customer
	err := s.inTx(ctx, "update_customer", func(ctx context.Context, tx pgx.Tx) error {
		if err := checkOwner(ctx, tx, "customer", ownCustomerSQL, tenantID, id); err != nil {
			return err
		}
		enc, iv, err := s.cipher.EncryptOptional(in.TaxRegistrationNumber)
		if err != nil {
			return fmt.Errorf("failed to encrypt tax registration number: %w", err)
		}
		c, err = s.scanCustomer(tx.QueryRow(ctx, `
			UPDATE customers SET name = $2, company_name = $3, email = $4, phone = $5, mobile = $6, address = $7,
				tax_registration_number_enc = $8, tax_registration_number_iv = $9,
				is_active = COALESCE($10, is_active), notes = $11, updated_at = now()
			WHERE id = $1
			RETURNING `+customerColumns,
			id, in.Name, in.CompanyName, in.Email, in.Phone, in.Mobile, in.Address, enc, iv, in.IsActive, in.Notes))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
