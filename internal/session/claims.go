package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the backend puts in its tokens.
type Claims struct {
	UserID    string
	OrgID     string
	ExpiresAt time.Time // zero when the token carries no exp
}

// Expired reports whether the token's exp is in the past relative to now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes the token payload without verifying the signature. The
// client has no key to verify with; the result is informational only and
// never decides whether a request is made.
func ParseClaims(token string) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	c := &Claims{}
	if v, ok := mc["user_id"].(string); ok {
		c.UserID = v
	}
	if v, ok := mc["org_id"].(string); ok {
		c.OrgID = v
	}
	exp, err := mc.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("failed to decode token expiry: %w", err)
	}
	if exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
