package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
)

const dateOnlyLayout = "2006-01-02"

// parseDate accepts a calendar date or an RFC 3339 timestamp and returns
// the calendar day in UTC.
func parseDate(field, value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		y, m, d := parsed.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperr.Validation(field, "must be a date in YYYY-MM-DD format")
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// dateOrZero parses an optional date, leaving the zero time for absent
// values so model defaults apply.
func dateOrZero(field string, value *string) (time.Time, error) {
	parsed, err := parseOptionalDate(field, value)
	if err != nil || parsed == nil {
		return time.Time{}, err
	}
	return *parsed, nil
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		AbortWithError(c, apperr.Validation(name, "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Validation(name, "must be a UUID")
	}
	return &id, nil
}

func queryBool(c *gin.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Validation(name, "must be true or false")
	}
	return v, nil
}

// queryList splits a comma separated query value such as status=sent,overdue.
func queryList[S ~string](c *gin.Context, name string) []S {
	var out []S
	for _, part := range strings.Split(c.Query(name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, S(part))
		}
	}
	return out
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		AbortWithError(c, invalidRequestError())
		return false
	}
	return true
}

func queryPtr(c *gin.Context, name string) *string {
	v, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	return &v
}
