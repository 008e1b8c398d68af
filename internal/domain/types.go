package domain

// Status represents a lightweight state value.
type Status string

// Content publishing states.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Pagination carries paging params and totals.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Authenticated reports whether a session identity is present.
func (r RequestContext) Authenticated() bool {
	return r.UserID != ""
}

// RoleAdmin is the dashboard role allowed to manage content and bookings.
const RoleAdmin = "admin"
