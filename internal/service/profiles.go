package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/teresa-solution/firm-management-service/internal/logger"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

type ProfileRepository interface {
	GetProfile(ctx context.Context, tenantID uuid.UUID) (*model.TenantProfile, error)
	CreateProfile(ctx context.Context, tenantID uuid.UUID, in model.TenantProfileInput) (*model.TenantProfile, error)
	UpdateProfile(ctx context.Context, tenantID uuid.UUID, in model.TenantProfileInput) (*model.TenantProfile, error)
}

// ProfileCache is told when a profile changes so it can drop its copy.
type ProfileCache interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

// ProfileService manages the firm's own registration details.
type ProfileService struct {
	repo  ProfileRepository
	cache ProfileCache
	log   zerolog.Logger
}

func NewProfileService(repo ProfileRepository, cache ProfileCache) *ProfileService {
	return &ProfileService{repo: repo, cache: cache, log: logger.WithComponent("profiles")}
}

func (s *ProfileService) Get(ctx context.Context) (*model.TenantProfile, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	return withRetry(ctx, "get_profile", func(ctx context.Context) (*model.TenantProfile, error) {
		return s.repo.GetProfile(ctx, tenantID)
	})
}

// Register creates the profile on the tenant's first sign-in.
func (s *ProfileService) Register(ctx context.Context, in model.TenantProfileInput) (*model.TenantProfile, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.repo.CreateProfile(ctx, tenantID, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, tenantID)
	s.log.Info().Str("tenant_id", tenantID.String()).Str("plan", string(p.SubscriptionPlan)).Msg("Tenant registered")
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, in model.TenantProfileInput) (*model.TenantProfile, error) {
	tenantID, err := tenantOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.repo.UpdateProfile(ctx, tenantID, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, tenantID)
	return p, nil
}
