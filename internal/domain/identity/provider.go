// Package identity defines the boundary to the external identity provider.
// The approval flow treats it as an opaque create/link capability: the only
// mutation performed against it is creating a user and handing back its ID.
package identity

import (
	"context"
	"errors"
)

// ErrNotFound is returned by FindByEmail when no identity matches.
var ErrNotFound = errors.New("identity not found")

// Identity is the caller-visible handle into the provider, keyed by email.
type Identity struct {
	ID    string
	Email string
}

// CreateParams carries the new identity's email plus provider metadata.
type CreateParams struct {
	Email    string
	Metadata map[string]any
}

// AccessLinkParams requests a one-time login link for an identity.
type AccessLinkParams struct {
	Email      string
	RedirectTo string
}

// Provider is the external identity provider's admin surface.
// FindByEmail matches case-insensitively; create-after-miss races are
// expected and surface as a duplicate error callers treat as lookup success.
type Provider interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	Create(ctx context.Context, params CreateParams) (*Identity, error)
	GenerateAccessLink(ctx context.Context, params AccessLinkParams) (string, error)
}
