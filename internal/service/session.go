// Package service holds the use cases of the firm management API. Each
// service reads the caller's tenant from the request context, validates
// input and delegates persistence to the store.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/teresa-solution/firm-management-service/internal/tenant"
)

// tenantOf returns the tenant of the authenticated caller.
func tenantOf(ctx context.Context) (uuid.UUID, error) {
	s, err := tenant.Require(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return s.TenantID, nil
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
