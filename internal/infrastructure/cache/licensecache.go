// Package cache provides Redis-backed read caches for hot lookup paths.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"skillforge/internal/domain/license"
	"skillforge/internal/shared/logger"
)

const (
	licenseKeyPrefix = "license:tenant:"
	nullMarker       = "_null"
	// Short TTL for not-found markers (anti-penetration)
	nullMarkerTTL = 2 * time.Minute
)

// licenseSnapshot is the cached wire form of a license row.
type licenseSnapshot struct {
	ID                   uint       `json:"id"`
	SID                  string     `json:"sid"`
	TenantID             string     `json:"tenant_id"`
	Tier                 string     `json:"tier"`
	Status               string     `json:"status"`
	ExpiresAt            *time.Time `json:"expires_at,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	StripeSubscriptionID *string    `json:"stripe_subscription_id,omitempty"`
	Features             []string   `json:"features"`
	MaxUsers             uint       `json:"max_users"`
	MaxDeployments       uint       `json:"max_deployments"`
	Version              int        `json:"version"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// LicenseCache layers a Redis read-through cache over the license
// repository. The gate runs on every request, so license reads dominate
// the query mix; the cache absorbs them. Cache errors degrade to direct
// repository reads, never to request failures.
type LicenseCache struct {
	client *redis.Client
	repo   license.Repository
	ttl    time.Duration
	logger logger.Interface
}

// NewLicenseCache creates a new license read cache.
func NewLicenseCache(client *redis.Client, repo license.Repository, ttl time.Duration, log logger.Interface) *LicenseCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LicenseCache{
		client: client,
		repo:   repo,
		ttl:    ttl,
		logger: log,
	}
}

func (c *LicenseCache) key(tenantID string) string {
	return licenseKeyPrefix + tenantID
}

// GetByTenant returns the tenant's license, consulting the cache first.
// A cached null marker means an earlier read confirmed the tenant has no
// license row.
func (c *LicenseCache) GetByTenant(ctx context.Context, tenantID string) (*license.License, error) {
	key := c.key(tenantID)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if cached == nullMarker {
			return nil, nil
		}
		l, err := snapshotToDomain([]byte(cached))
		if err == nil {
			return l, nil
		}
		c.logger.Warnw("discarding unreadable cached license", "tenant_id", tenantID, "error", err)
	} else if err != redis.Nil {
		c.logger.Warnw("license cache read failed, falling back to database",
			"tenant_id", tenantID,
			"error", err)
	}

	l, err := c.repo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if l == nil {
		if err := c.client.Set(ctx, key, nullMarker, nullMarkerTTL).Err(); err != nil {
			c.logger.Warnw("failed to cache null license marker", "tenant_id", tenantID, "error", err)
		}
		return nil, nil
	}

	encoded, err := json.Marshal(domainToSnapshot(l))
	if err != nil {
		return l, nil
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.logger.Warnw("failed to cache license", "tenant_id", tenantID, "error", err)
	}
	return l, nil
}

// Invalidate drops the cached entry so the next gate check reads the row
// fresh after a license mutation.
func (c *LicenseCache) Invalidate(ctx context.Context, tenantID string) error {
	if err := c.client.Del(ctx, c.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate license cache: %w", err)
	}
	return nil
}

func domainToSnapshot(l *license.License) licenseSnapshot {
	return licenseSnapshot{
		ID:                   l.ID(),
		SID:                  l.SID(),
		TenantID:             l.TenantID(),
		Tier:                 l.Tier().String(),
		Status:               l.Status().String(),
		ExpiresAt:            l.ExpiresAt(),
		CurrentPeriodEnd:     l.CurrentPeriodEnd(),
		StripeSubscriptionID: l.StripeSubscriptionID(),
		Features:             l.Features(),
		MaxUsers:             l.MaxUsers(),
		MaxDeployments:       l.MaxDeployments(),
		Version:              l.Version(),
		CreatedAt:            l.CreatedAt(),
		UpdatedAt:            l.UpdatedAt(),
	}
}

func snapshotToDomain(data []byte) (*license.License, error) {
	var s licenseSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached license: %w", err)
	}
	return license.ReconstructLicense(
		s.ID,
		s.SID,
		s.TenantID,
		license.Tier(s.Tier),
		license.Status(s.Status),
		s.ExpiresAt,
		s.CurrentPeriodEnd,
		s.StripeSubscriptionID,
		s.Features,
		s.MaxUsers,
		s.MaxDeployments,
		s.Version,
		s.CreatedAt,
		s.UpdatedAt,
	)
}
