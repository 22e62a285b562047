package models

import "github.com/dmitrijs2005/valuationdesk/internal/common"

// Identity names the acting user in requests that carry no bearer token.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	ClientID string `json:"clientId"`
}

// Guest is the identity sent when no session exists.
var Guest = Identity{Username: "guest", Role: "guest", ClientID: "guest"}

// Session is the persisted client-side auth state.
type Session struct {
	Identity
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Fields returns the identity as request body fields.
func (i Identity) Fields() map[string]any {
	return map[string]any{
		"username": i.Username,
		"role":     i.Role,
		"clientId": i.ClientID,
	}
}

// CanReview reports whether the role may approve, reject or request rework.
func (i Identity) CanReview() bool {
	return common.IsReviewer(i.Role)
}
