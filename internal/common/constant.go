// Package common contains shared constants and sentinel errors used across
// the valuation desk client and server.
package common

// Roles recognised by the API.
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Record lifecycle statuses.
const (
	StatusPending    = "pending"
	StatusOnProgress = "on-progress"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusRework     = "rework"
)

// Statuses lists every valid lifecycle status in display order.
var Statuses = []string{StatusPending, StatusOnProgress, StatusApproved, StatusRejected, StatusRework}

// IsValidStatus reports whether s is one of Statuses.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsReviewer reports whether role may change a record's status.
func IsReviewer(role string) bool {
	return role == RoleManager || role == RoleAdmin
}
