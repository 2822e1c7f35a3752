package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	customerPrefix = "CUS"
	leadPrefix     = "LEAD"
)

// nextSequence hands out the next number of a per-tenant counter. The row
// lock taken by the upsert serialises concurrent callers, so numbers are
// gapless within committed transactions.
func nextSequence(ctx context.Context, q querier, tenantID uuid.UUID, prefix string) (int64, error) {
	var n int64
	err := q.QueryRow(ctx, `
		INSERT INTO code_sequences (user_id, prefix, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, prefix)
		DO UPDATE SET last_value = code_sequences.last_value + 1
		RETURNING last_value`, tenantID, prefix).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s number: %w", prefix, err)
	}
	return n, nil
}

// nextCode returns codes like CUS-000001.
func nextCode(ctx context.Context, q querier, tenantID uuid.UUID, prefix string) (string, error) {
	n, err := nextSequence(ctx, q, tenantID, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", prefix, n), nil
}

// nextInvoiceNumber returns INV-YYYYMM-NNNN, numbered per tenant and month.
func nextInvoiceNumber(ctx context.Context, q querier, tenantID uuid.UUID, invoiceDate time.Time) (string, error) {
	prefix := "INV-" + invoiceDate.Format("200601")
	n, err := nextSequence(ctx, q, tenantID, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, n), nil
}
