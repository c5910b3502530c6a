package domain

import "time"

// AccessContext is the caller's authorization scope. It is passed explicitly
// into every service call instead of being read from request-global state.
type AccessContext struct {
	UserID          string
	OrganizationIDs []string
	IsAdmin         bool
}

// CanAccess reports whether the caller may act on data owned by organizationID.
func (a AccessContext) CanAccess(organizationID string) bool {
	if a.IsAdmin {
		return true
	}
	for _, id := range a.OrganizationIDs {
		if id == organizationID {
			return true
		}
	}
	return false
}

// TokenIssuer issues tokens (e.g. JWT) carrying an access scope.
type TokenIssuer interface {
	Issue(access AccessContext, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the caller's access scope.
type TokenVerifier interface {
	Verify(token string) (AccessContext, error)
}
