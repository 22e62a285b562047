package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for client id, username and password, signs in and loads
// the dashboard.
func (a *App) Login(ctx context.Context) error {
	clientID, err := getSimpleText(a.reader, "Enter client id", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if clientID == "" || username == "" || len(password) == 0 {
		fmt.Fprintln(a.out, "ClientId, username, and password are required")
		return common.ErrorValidation
	}

	s, err := a.api.Login(ctx, clientID, username, string(password))
	if err != nil {
		a.log.Warn(ctx, "login failed", "username", username, "error", err)
		fmt.Fprintln(a.out, "Login unsuccessful:", err)
		return err
	}

	a.mu.Lock()
	a.session = s
	a.records = nil
	a.mu.Unlock()

	fmt.Fprintf(a.out, "Sign in successful (%s, %s)\n", s.Username, s.Role)
	return a.Dashboard(ctx, nil)
}

// Logout ends the session. Local state is cleared even when the server
// call fails.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)

	a.mu.Lock()
	a.session = nil
	a.records = nil
	a.mu.Unlock()

	if err != nil {
		a.log.Warn(ctx, "logout request failed", "error", err)
	}
	fmt.Fprintln(a.out, "Logout successful")
	return err
}
