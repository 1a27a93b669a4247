package domain

import "strings"

const RoleAdmin = "ADMIN"

// RequestContext carries the authenticated caller, resolved by the auth middleware.
type RequestContext struct {
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	RequestID string `json:"-"`
}

func (rc RequestContext) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(rc.Role), RoleAdmin)
}

// CanAccess reports whether the caller may read or act on a resource owned by userID.
func (rc RequestContext) CanAccess(userID string) bool {
	return rc.IsAdmin() || (rc.UserID != "" && rc.UserID == userID)
}
