package tenant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/model"
)

func TestSessionContext(t *testing.T) {
	_, err := Require(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	id := uuid.New()
	ctx := WithSession(context.Background(), Session{TenantID: id, AccessToken: "tok"})
	s, err := Require(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, s.TenantID)
	assert.Equal(t, "tok", s.AccessToken)

	_, ok := FromContext(WithSession(context.Background(), Session{}))
	assert.False(t, ok)
}

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("signing-key")
	id := uuid.New()
	token, err := v.Issue(id, time.Hour)
	require.NoError(t, err)

	s, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, s.TenantID)
	assert.Equal(t, token, s.AccessToken)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("signing-key")
	id := uuid.New()

	other, err := NewVerifier("other-key").Issue(id, time.Hour)
	require.NoError(t, err)

	expired, err := v.Issue(id, -time.Hour)
	require.NoError(t, err)

	notUUID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "admin"}).SignedString([]byte("signing-key"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: id.String()}).SignedString([]byte("signing-key"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong key": other,
		"expired":   expired,
		"subject":   notUUID,
		"algorithm": hs512,
		"garbage":   "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifier_ExpiryLeeway(t *testing.T) {
	v := NewVerifier("signing-key")
	token, err := v.Issue(uuid.New(), -5*time.Second)
	require.NoError(t, err)
	_, err = v.Verify(token)
	assert.NoError(t, err)
}

type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	deleted []string
}

func newFakeRedis() *fakeRedis { return &fakeRedis{data: map[string]string{}} }

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) SetEx(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	f.deleted = append(f.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeRedis) Close() error { return nil }

type fakeProfiles struct {
	profiles map[uuid.UUID]model.TenantProfile
	calls    int
}

func (f *fakeProfiles) GetProfile(_ context.Context, id uuid.UUID) (*model.TenantProfile, error) {
	f.calls++
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperr.NotFound("profile")
	}
	return &p, nil
}

func TestResolver_Authorize(t *testing.T) {
	active, suspended, unknown := uuid.New(), uuid.New(), uuid.New()
	profiles := &fakeProfiles{profiles: map[uuid.UUID]model.TenantProfile{
		active:    {ID: active, SubscriptionStatus: model.SubscriptionTrial},
		suspended: {ID: suspended, SubscriptionStatus: model.SubscriptionSuspended},
	}}
	r := NewResolver(profiles, nil, time.Minute)

	assert.NoError(t, r.Authorize(context.Background(), active))
	assert.NoError(t, r.Authorize(context.Background(), unknown))
	assert.True(t, errors.Is(r.Authorize(context.Background(), suspended), apperr.ErrUnauthorized))
}

func TestResolver_CachesProfile(t *testing.T) {
	id := uuid.New()
	profiles := &fakeProfiles{profiles: map[uuid.UUID]model.TenantProfile{
		id: {ID: id, CompanyName: "Ledger & Co", SubscriptionStatus: model.SubscriptionActive},
	}}
	cache := newFakeRedis()
	r := NewResolver(profiles, cache, time.Minute)
	ctx := context.Background()

	p, err := r.Profile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ledger & Co", p.CompanyName)
	p, err = r.Profile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ledger & Co", p.CompanyName)
	assert.Equal(t, 1, profiles.calls)

	r.Invalidate(ctx, id)
	assert.Equal(t, []string{"tenant_profile:" + id.String()}, cache.deleted)
	_, err = r.Profile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, profiles.calls)
}

func TestResolver_CacheFailureFallsThrough(t *testing.T) {
	id := uuid.New()
	profiles := &fakeProfiles{profiles: map[uuid.UUID]model.TenantProfile{
		id: {ID: id, SubscriptionStatus: model.SubscriptionActive},
	}}
	cache := newFakeRedis()
	cache.getErr = errors.New("connection refused")
	r := NewResolver(profiles, cache, time.Minute)

	assert.NoError(t, r.Authorize(context.Background(), id))
	assert.Equal(t, 1, profiles.calls)
}
