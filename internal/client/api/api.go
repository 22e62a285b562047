// Package api is the typed client of the valuation desk HTTP API. Every call
// goes through the request gateway.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/valuationdesk/internal/client/gateway"
	"github.com/dmitrijs2005/valuationdesk/internal/client/models"
)

var ErrBadPayload = errors.New("unexpected response payload")

type Client struct {
	gw *gateway.Gateway
}

func New(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

func (c *Client) Gateway() *gateway.Gateway { return c.gw }

// Session returns the signed-in session, or nil.
func (c *Client) Session(ctx context.Context) (*models.Session, error) {
	return c.gw.Session(ctx)
}

// InvalidateCache drops cached responses whose key contains substr.
func (c *Client) InvalidateCache(ctx context.Context, substr string) {
	c.gw.InvalidateCache(ctx, substr)
}

type loginResponse struct {
	Message      string `json:"message"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Role         string `json:"role"`
	Username     string `json:"username"`
	ClientID     string `json:"clientId"`
}

// Login authenticates and stores the new session. The one-time auth
// notification is re-armed.
func (c *Client) Login(ctx context.Context, clientID, username, password string) (*models.Session, error) {
	resp, err := c.gw.Post(ctx, "/auth/login", map[string]any{
		"clientId": clientID,
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	var lr loginResponse
	if err := resp.Decode(&lr); err != nil {
		return nil, fmt.Errorf("login: %w: %v", ErrBadPayload, err)
	}

	s := &models.Session{
		Identity:     models.Identity{Username: lr.Username, Role: lr.Role, ClientID: lr.ClientID},
		Token:        lr.Token,
		RefreshToken: lr.RefreshToken,
	}
	if err := c.gw.SetSession(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.gw.ResetNotification()
	c.gw.ClearCache(ctx)
	return s, nil
}

// Logout ends the session locally even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	s, _ := c.gw.Session(ctx)
	body := map[string]any{}
	if s != nil {
		body["username"] = s.Username
		body["clientId"] = s.ClientID
		body["refreshToken"] = s.RefreshToken
	}
	_, err := c.gw.Post(ctx, "/auth/logout", body)

	c.gw.ClearCache(ctx)
	if cerr := c.gw.ClearSession(ctx); cerr != nil {
		return cerr
	}
	return err
}

// List fetches every record of a collection visible to the caller.
func (c *Client) List(ctx context.Context, coll models.Collection) ([]models.Record, error) {
	q := url.Values{}
	if s, _ := c.gw.Session(ctx); s != nil {
		q.Set("username", s.Username)
		q.Set("userRole", s.Role)
		q.Set("clientId", s.ClientID)
	}
	resp, err := c.gw.Get(ctx, coll.Path, q)
	if err != nil {
		return nil, err
	}
	return DecodeRecords(resp.Body)
}

// Record fetches one record by its uniqueId.
func (c *Client) Record(ctx context.Context, form models.FormType, uniqueID string) (models.Record, error) {
	coll := models.CollectionFor(form)
	resp, err := c.gw.Get(ctx, coll.Path+"/"+url.PathEscape(uniqueID), nil)
	if err != nil {
		return nil, err
	}
	rec, err := decodeRecord(resp.Body)
	if err != nil {
		return nil, err
	}
	rec["formType"] = string(coll.Form)
	return rec, nil
}

// Save creates or updates a record keyed by its uniqueId.
func (c *Client) Save(ctx context.Context, form models.FormType, rec models.Record) (models.Record, error) {
	coll := models.CollectionFor(form)
	resp, err := c.gw.Post(ctx, coll.Path, rec)
	if err != nil {
		return nil, err
	}
	c.gw.InvalidateCache(ctx, coll.Path)
	return decodeRecord(resp.Body)
}

// SetStatus moves a record to status. Only reviewers may call it.
func (c *Client) SetStatus(ctx context.Context, form models.FormType, uniqueID string, status models.Status) error {
	coll := models.CollectionFor(form)
	_, err := c.gw.Patch(ctx, coll.Path+"/"+url.PathEscape(uniqueID)+"/status", map[string]any{"status": string(status)})
	if err != nil {
		return err
	}
	c.gw.InvalidateCache(ctx, coll.Path)
	return nil
}

// RequestRework sends a record back to its author with comments.
func (c *Client) RequestRework(ctx context.Context, form models.FormType, uniqueID, comments string) error {
	coll := models.CollectionFor(form)
	_, err := c.gw.Post(ctx, coll.Path+"/"+url.PathEscape(uniqueID)+"/rework", map[string]any{"reworkComments": comments})
	if err != nil {
		return err
	}
	c.gw.InvalidateCache(ctx, coll.Path)
	return nil
}

type Presigned struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignExport reserves an archive slot for an exported file.
func (c *Client) PresignExport(ctx context.Context, fileName string) (Presigned, error) {
	var p Presigned
	resp, err := c.gw.Post(ctx, "/exports/presign", map[string]any{"fileName": fileName})
	if err != nil {
		return p, err
	}
	if err := resp.Decode(&p); err != nil || p.URL == "" {
		return p, ErrBadPayload
	}
	return p, nil
}

// ExportURL returns a download link for an archived export.
func (c *Client) ExportURL(ctx context.Context, key string) (string, error) {
	resp, err := c.gw.Get(ctx, "/exports/url", url.Values{"key": {key}})
	if err != nil {
		return "", err
	}
	var p Presigned
	if err := resp.Decode(&p); err != nil || p.URL == "" {
		return "", ErrBadPayload
	}
	return p.URL, nil
}

// DecodeRecords accepts a bare array, {data: [...]} or {data: {data: [...]}}.
// Anything else is an empty list.
func DecodeRecords(body []byte) ([]models.Record, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return toRecords(raw), nil
}

func toRecords(raw any) []models.Record {
	switch v := raw.(type) {
	case []any:
		out := make([]models.Record, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, models.Record(m))
			}
		}
		return out
	case map[string]any:
		switch d := v["data"].(type) {
		case []any:
			return toRecords(d)
		case map[string]any:
			if inner, ok := d["data"].([]any); ok {
				return toRecords(inner)
			}
		}
	}
	return []models.Record{}
}

// decodeRecord accepts a bare object or {data: {...}}.
func decodeRecord(body []byte) (models.Record, error) {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if d, ok := m["data"].(map[string]any); ok {
		return models.Record(d), nil
	}
	return models.Record(m), nil
}
