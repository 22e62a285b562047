package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
)

const (
	msgLoginRequired    = "ClientId, username, and password are required"
	msgBadCredentials   = "Invalid credentials. Please check your clientId, username, and password."
	msgRefreshRequired  = "Refresh token is required"
	msgRefreshInvalid   = "Invalid or expired refresh token"
	msgSignInSuccessful = "Sign in successful"
	msgTokenRefreshed   = "Token refreshed successfully"
	msgLogoutSuccessful = "Logout successful"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ClientID string `json:"clientId"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &in); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	res, err := s.users.Login(r.Context(), in.ClientID, in.Username, in.Password)
	switch {
	case errors.Is(err, common.ErrorValidation):
		respondMessage(w, http.StatusBadRequest, msgLoginRequired)
		return
	case errors.Is(err, common.ErrorUnauthorized):
		s.log.Warn(r.Context(), "login failed", "clientId", in.ClientID, "username", in.Username)
		respondMessage(w, http.StatusUnauthorized, msgBadCredentials)
		return
	case err != nil:
		s.respondError(r.Context(), w, err)
		return
	}

	s.log.Info(r.Context(), "user signed in", "clientId", res.User.ClientID, "username", res.User.Username)
	respondJSON(w, http.StatusOK, map[string]any{
		"message":      msgSignInSuccessful,
		"role":         res.User.Role,
		"username":     res.User.Username,
		"clientId":     res.User.ClientID,
		"token":        res.AccessToken,
		"refreshToken": res.RefreshToken,
	})
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
		Token        string `json:"token"`
	}
	if err := decodeBody(r, &in); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}
	token := in.RefreshToken
	if token == "" {
		token = in.Token
	}
	if token == "" {
		respondMessage(w, http.StatusBadRequest, msgRefreshRequired)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), token)
	if err != nil {
		if statusOf(err) == http.StatusUnauthorized {
			respondMessage(w, http.StatusUnauthorized, msgRefreshInvalid)
			return
		}
		s.respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":      msgTokenRefreshed,
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username     string `json:"username"`
		ClientID     string `json:"clientId"`
		RefreshToken string `json:"refreshToken"`
	}
	// An empty body is a valid logout.
	if r.ContentLength != 0 {
		if err := decodeBody(r, &in); err != nil {
			s.respondError(r.Context(), w, err)
			return
		}
	}

	if err := s.users.Logout(r.Context(), in.RefreshToken); err != nil {
		s.log.Warn(r.Context(), "refresh token revocation failed", "error", err)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":  msgLogoutSuccessful,
		"username": in.Username,
		"clientId": in.ClientID,
	})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ClientID string `json:"clientId"`
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeBody(r, &in); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	admin := principalFrom(r.Context())
	if in.ClientID == "" {
		in.ClientID = admin.ClientID
	}

	u, err := s.users.CreateUser(r.Context(), in.ClientID, in.Username, in.Password, in.Role)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.log.Info(r.Context(), "user created", "by", admin.Username, "clientId", u.ClientID, "username", u.Username, "role", u.Role)
	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user": map[string]any{
			"id":       u.ID,
			"clientId": u.ClientID,
			"username": u.Username,
			"role":     u.Role,
		},
	})
}
