// Package correlation carries a per-request trace identifier through logs,
// audit rows, and calls to external systems. The identifier is generated at
// the edge (or taken from the inbound X-Request-ID header) and threaded
// through context.Context, never stored in package state.
package correlation

import (
	"context"
	"net/http"

	"skillforge/internal/shared/id"
)

// HeaderRequestID is the canonical correlation header.
const HeaderRequestID = "X-Request-ID"

// Context identifies one request or job. The optional fields tie the trace
// to billing and identity events when those systems are involved.
type Context struct {
	RequestID string
	PaymentID string
	EventID   string
	SessionID string
}

// New generates a fresh correlation context with a req_-prefixed identifier.
func New() Context {
	return Context{RequestID: id.MustGenerateWithPrefix(id.PrefixRequest, 16)}
}

// FromHTTPHeader honors an inbound request identifier if present, otherwise
// generates one. The returned context always has a non-empty RequestID.
func FromHTTPHeader(h http.Header) Context {
	if rid := h.Get(HeaderRequestID); rid != "" && len(rid) <= 64 {
		return Context{RequestID: rid}
	}
	return New()
}

// WithPayment returns a copy tagged with a billing event identifier.
func (c Context) WithPayment(paymentID string) Context {
	c.PaymentID = paymentID
	return c
}

// WithSession returns a copy tagged with an identity session identifier.
func (c Context) WithSession(sessionID string) Context {
	c.SessionID = sessionID
	return c
}

// WithEvent returns a copy tagged with an external event identifier.
func (c Context) WithEvent(eventID string) Context {
	c.EventID = eventID
	return c
}

// Fields returns logger key/value pairs for every populated identifier.
func (c Context) Fields() []any {
	fields := []any{"request_id", c.RequestID}
	if c.PaymentID != "" {
		fields = append(fields, "payment_id", c.PaymentID)
	}
	if c.EventID != "" {
		fields = append(fields, "event_id", c.EventID)
	}
	if c.SessionID != "" {
		fields = append(fields, "session_id", c.SessionID)
	}
	return fields
}

type ctxKey struct{}

// NewContext embeds the correlation context into a context.Context.
func NewContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext extracts the correlation context. When none is present a fresh
// one is generated so callers always have a usable RequestID.
func FromContext(ctx context.Context) Context {
	if c, ok := ctx.Value(ctxKey{}).(Context); ok {
		return c
	}
	return New()
}

// RequestIDFromContext is a convenience accessor for audit rows.
func RequestIDFromContext(ctx context.Context) string {
	return FromContext(ctx).RequestID
}
