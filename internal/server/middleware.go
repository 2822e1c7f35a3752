package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
	"github.com/teresa-solution/firm-management-service/internal/logger"
	"github.com/teresa-solution/firm-management-service/internal/tenant"
)

type TokenVerifier interface {
	Verify(token string) (tenant.Session, error)
}

// TenantAuthorizer decides whether a verified tenant may use the API.
type TenantAuthorizer interface {
	Authorize(ctx context.Context, tenantID uuid.UUID) error
}

// AuthRequired verifies the bearer token, checks the tenant's subscription
// and puts the session into the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			AbortWithError(c, errUnauthenticated)
			return
		}
		sess, err := s.verifier.Verify(token)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %v", errUnauthenticated, err))
			return
		}

		ctx := c.Request.Context()
		if err := s.authorizer.Authorize(ctx, sess.TenantID); err != nil {
			if apperr.KindOf(err) == apperr.KindUnauthorized {
				err = errForbidden
			}
			AbortWithError(c, err)
			return
		}

		l := logger.WithContext(ctx).With().Str("tenant_id", sess.TenantID.String()).Logger()
		ctx = l.WithContext(tenant.WithSession(ctx, sess))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger writes one access log line per request.
func RequestLogger() gin.HandlerFunc {
	log := logger.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := log.With().Str("request_id", uuid.NewString()).Logger()
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		ev := reqLog.Info()
		switch {
		case status >= 500:
			ev = reqLog.Error()
		case status >= 400:
			ev = reqLog.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}
