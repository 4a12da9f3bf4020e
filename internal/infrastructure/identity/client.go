// Package identity implements the identity.Provider port against a
// GoTrue-compatible admin API. All calls carry the service role key; none of
// these endpoints are reachable with end-user tokens.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"skillforge/internal/domain/identity"
	"skillforge/internal/shared/config"
	"skillforge/internal/shared/correlation"
	"skillforge/internal/shared/errors"
	"skillforge/internal/shared/logger"
)

const (
	// Maximum response body size for identity API responses (256KB)
	maxResponseSize = 256 << 10

	defaultTimeout = 10 * time.Second
)

// Client is an HTTP client for the identity provider's admin API.
type Client struct {
	baseURL     string
	serviceKey  string
	redirectURL string
	httpClient  *http.Client
	logger      logger.Interface
}

// NewClient creates a new identity provider client from configuration.
func NewClient(cfg *config.IdentityConfig, log logger.Interface) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey:  cfg.ServiceKey,
		redirectURL: cfg.RedirectURL,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      log,
	}
}

var _ identity.Provider = (*Client)(nil)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type userListResponse struct {
	Users []userResponse `json:"users"`
}

// FindByEmail looks up a user by exact email match.
func (c *Client) FindByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	endpoint := c.baseURL + "/admin/users?email=" + url.QueryEscape(email)

	var list userListResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &list); err != nil {
		return nil, err
	}

	for _, u := range list.Users {
		if strings.EqualFold(u.Email, email) {
			return &identity.Identity{ID: u.ID, Email: u.Email}, nil
		}
	}
	return nil, identity.ErrNotFound
}

// Create provisions a confirmed user. The provider sends no confirmation
// email; onboarding happens through the access link instead.
func (c *Client) Create(ctx context.Context, params identity.CreateParams) (*identity.Identity, error) {
	body := map[string]any{
		"email":         params.Email,
		"email_confirm": true,
	}
	if len(params.Metadata) > 0 {
		body["user_metadata"] = params.Metadata
	}

	var user userResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/admin/users", body, &user); err != nil {
		return nil, err
	}

	c.logger.Infow("identity created",
		"identity_id", user.ID,
		"request_id", correlation.RequestIDFromContext(ctx))
	return &identity.Identity{ID: user.ID, Email: user.Email}, nil
}

type linkResponse struct {
	ActionLink string `json:"action_link"`
}

// GenerateAccessLink mints a one-time magic link for the user.
func (c *Client) GenerateAccessLink(ctx context.Context, params identity.AccessLinkParams) (string, error) {
	redirectTo := params.RedirectTo
	if redirectTo == "" {
		redirectTo = c.redirectURL
	}
	body := map[string]any{
		"type":        "magiclink",
		"email":       params.Email,
		"redirect_to": redirectTo,
	}

	var link linkResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/admin/generate_link", body, &link); err != nil {
		return "", err
	}
	if link.ActionLink == "" {
		return "", fmt.Errorf("identity provider returned empty access link")
	}
	return link.ActionLink, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rid := correlation.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set(correlation.HeaderRequestID, rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return identity.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		c.logger.Warnw("identity provider error response",
			"method", method,
			"status", resp.StatusCode,
			"detail", string(detail))
		if isDuplicateUserResponse(resp.StatusCode, string(detail)) {
			return errors.NewConflictError("identity already exists", string(detail))
		}
		return fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, string(detail))
	}

	if out != nil {
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
			return fmt.Errorf("failed to decode identity provider response: %w", err)
		}
	}
	return nil
}

// isDuplicateUserResponse recognizes the provider's duplicate-user answers:
// a plain 409, or the 422 it returns with an "already been registered"
// message when a concurrent create won the race.
func isDuplicateUserResponse(status int, detail string) bool {
	if status == http.StatusConflict {
		return true
	}
	if status != http.StatusUnprocessableEntity {
		return false
	}
	lower := strings.ToLower(detail)
	return strings.Contains(lower, "already been registered") ||
		strings.Contains(lower, "already registered") ||
		strings.Contains(lower, "already exists")
}
