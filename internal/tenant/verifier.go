package tenant

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid access token")

// Verifier checks HS256 bearer tokens whose subject is the tenant id.
type Verifier struct {
	key    []byte
	leeway time.Duration
}

func NewVerifier(accessKey string) *Verifier {
	return &Verifier{key: []byte(accessKey), leeway: 30 * time.Second}
}

func (v *Verifier) Verify(token string) (Session, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil && !v.withinLeeway(err, claims) {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed == nil || parsed.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return Session{}, fmt.Errorf("%w: unsupported algorithm", ErrInvalidToken)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return Session{}, fmt.Errorf("%w: subject is not a tenant id", ErrInvalidToken)
	}
	return Session{TenantID: id, AccessToken: token}, nil
}

// withinLeeway tolerates small clock skew on expiry. Any other validation
// failure is fatal.
func (v *Verifier) withinLeeway(err error, claims *jwt.RegisteredClaims) bool {
	var verr *jwt.ValidationError
	if !errors.As(err, &verr) || verr.Errors != jwt.ValidationErrorExpired {
		return false
	}
	return claims.ExpiresAt != nil && time.Since(claims.ExpiresAt.Time) < v.leeway
}

// Issue signs a token for tenantID. The auth provider issues tokens in
// production; this is used by tooling and tests.
func (v *Verifier) Issue(tenantID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   tenantID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return t.SignedString(v.key)
}
