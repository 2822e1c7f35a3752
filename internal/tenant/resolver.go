package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/logger"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

type ProfileLoader interface {
	GetProfile(ctx context.Context, tenantID uuid.UUID) (*model.TenantProfile, error)
}

// Resolver decides whether a verified tenant may use the API, based on the
// subscription status of its profile. Profiles are cached in Redis when a
// client is configured.
type Resolver struct {
	profiles ProfileLoader
	redis    RedisClient
	ttl      time.Duration
	log      zerolog.Logger
}

func NewResolver(profiles ProfileLoader, rdb RedisClient, ttl time.Duration) *Resolver {
	return &Resolver{
		profiles: profiles,
		redis:    rdb,
		ttl:      ttl,
		log:      logger.WithComponent("tenant-resolver"),
	}
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("tenant_profile:%s", id.String())
}

// Authorize returns nil when the tenant may proceed. A tenant that has not
// registered a profile yet is allowed so it can create one.
func (r *Resolver) Authorize(ctx context.Context, tenantID uuid.UUID) error {
	profile, err := r.Profile(ctx, tenantID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !profile.SubscriptionStatus.AllowsAccess() {
		return apperr.Unauthorized("tenant")
	}
	return nil
}

// Profile returns the tenant's profile, from cache when possible.
func (r *Resolver) Profile(ctx context.Context, tenantID uuid.UUID) (*model.TenantProfile, error) {
	key := cacheKey(tenantID)
	if r.redis != nil {
		cached, err := r.redis.Get(ctx, key).Result()
		switch {
		case err == nil:
			profile := &model.TenantProfile{}
			if err := json.Unmarshal([]byte(cached), profile); err == nil {
				return profile, nil
			}
		case !errors.Is(err, redis.Nil):
			r.log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("profile cache read failed")
		}
	}

	profile, err := r.profiles.GetProfile(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(profile); err == nil {
			if err := r.redis.SetEx(ctx, key, data, r.ttl).Err(); err != nil {
				r.log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("profile cache write failed")
			}
		}
	}
	return profile, nil
}

// Invalidate drops the cached profile after it changes.
func (r *Resolver) Invalidate(ctx context.Context, tenantID uuid.UUID) {
	if r.redis == nil {
		return
	}
	if err := r.redis.Del(ctx, cacheKey(tenantID)).Err(); err != nil {
		r.log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("profile cache invalidation failed")
	}
}
