// Package proxy manages the process-wide pool of credentialed egress
// identities used to geo-target fetches. Each attempt checks out one egress
// for its duration; attempts for the same region never hold the same egress
// concurrently, so a region's session always sees consistent geo-targeting.
package proxy

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Config is the provider account shared by all egress identities.
type Config struct {
	Server   string // scheme://host:port of the provider gateway
	Username string
	Password string
}

// Endpoint is one checked-out egress identity.
type Endpoint struct {
	Server   string
	Username string
	Password string
	Region   string
}

// URL renders the endpoint as a proxy URL usable by an HTTP transport.
func (e *Endpoint) URL() (*url.URL, error) {
	u, err := url.Parse(e.Server)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy server %q: %w", e.Server, err)
	}
	if e.Username != "" {
		u.User = url.UserPassword(e.Username, e.Password)
	}
	return u, nil
}

// Pool hands out egress identities. A nil or unconfigured pool means direct
// egress; callers check Enabled before checking out.
type Pool struct {
	cfg Config

	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewPool(cfg Config) (*Pool, error) {
	if cfg.Server != "" {
		if _, err := url.Parse(cfg.Server); err != nil {
			return nil, fmt.Errorf("invalid proxy server %q: %w", cfg.Server, err)
		}
		if cfg.Username == "" || cfg.Password == "" {
			return nil, fmt.Errorf("proxy server configured without credentials")
		}
	}
	return &Pool{cfg: cfg, slots: make(map[string]chan struct{})}, nil
}

// Enabled reports whether a provider gateway is configured at all.
func (p *Pool) Enabled() bool {
	return p != nil && p.cfg.Server != ""
}

// Checkout acquires the egress identity for a region, blocking while another
// attempt for the same region holds it. The returned release func must be
// called when the attempt completes or fails. An empty region yields an
// untargeted egress.
func (p *Pool) Checkout(ctx context.Context, region string) (*Endpoint, func(), error) {
	if !p.Enabled() {
		return nil, nil, fmt.Errorf("proxy pool is not configured")
	}

	slot := p.slot(region)
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case slot <- struct{}{}:
	}

	endpoint := &Endpoint{
		Server:   p.cfg.Server,
		Username: p.targetedUsername(region),
		Password: p.cfg.Password,
		Region:   region,
	}

	var once sync.Once
	release := func() {
		once.Do(func() { <-slot })
	}
	return endpoint, release, nil
}

func (p *Pool) slot(region string) chan struct{} {
	key := strings.ToUpper(region)

	p.mu.Lock()
	defer p.mu.Unlock()

	slot, ok := p.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		p.slots[key] = slot
	}
	return slot
}

// targetedUsername embeds the destination country in the proxy username,
// the convention residential providers use for geo-targeting.
func (p *Pool) targetedUsername(region string) string {
	if region == "" {
		return p.cfg.Username
	}
	return fmt.Sprintf("%s-country-%s", p.cfg.Username, strings.ToUpper(region))
}
