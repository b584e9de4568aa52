package content

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"

	"github.com/apiscout/apiscout/internal/scout"
)

const robotsBodyLimit = 1 << 20

// robotsGate answers per-URL fetch permission from each host's robots.txt.
// Rules are resolved once per host and held for the life of the run; a host
// whose robots.txt cannot be fetched or parsed is treated as open.
type robotsGate struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger

	mu    sync.Mutex
	hosts map[string]*robotstxt.Group
}

// NewRobotsEnforcer builds a RobotsPolicy. With respect disabled every URL
// passes. The timeout bounds the robots.txt fetch itself.
func NewRobotsEnforcer(respect bool, userAgent string, timeout time.Duration, logger *zap.Logger) scout.RobotsPolicy {
	if !respect {
		return &allowAllPolicy{}
	}
	return &robotsGate{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
		hosts:     make(map[string]*robotstxt.Group),
	}
}

// Allowed implements scout.RobotsPolicy. Unparseable URLs are denied;
// everything else is checked against the host's cached rule group.
func (g *robotsGate) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	group := g.groupFor(ctx, parsed)
	if group == nil {
		return true
	}
	return group.Test(parsed.Path)
}

// groupFor returns the rule group for the URL's host, fetching robots.txt on
// first sight. A nil group means no restrictions apply to our agent.
func (g *robotsGate) groupFor(ctx context.Context, parsed *url.URL) *robotstxt.Group {
	host := strings.ToLower(parsed.Host)

	g.mu.Lock()
	group, seen := g.hosts[host]
	g.mu.Unlock()
	if seen {
		return group
	}

	group = g.fetchGroup(ctx, parsed)

	g.mu.Lock()
	if cached, raced := g.hosts[host]; raced {
		group = cached
	} else {
		g.hosts[host] = group
	}
	g.mu.Unlock()
	return group
}

func (g *robotsGate) fetchGroup(ctx context.Context, parsed *url.URL) *robotstxt.Group {
	robotsURL := url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: "/robots.txt"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		g.warnOpen(parsed.Host, "robots request build failed", err)
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.warnOpen(parsed.Host, "robots fetch failed", err)
		return nil
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			g.logger.Debug("robots body close failed", zap.Error(cerr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, robotsBodyLimit))
	if err != nil {
		g.warnOpen(parsed.Host, "robots read failed", err)
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		g.warnOpen(parsed.Host, "robots parse failed", err)
		return nil
	}
	return data.FindGroup(g.userAgent)
}

func (g *robotsGate) warnOpen(host, msg string, err error) {
	g.logger.Warn(msg+"; treating host as open", zap.String("host", host), zap.Error(err))
}

type allowAllPolicy struct{}

func (a *allowAllPolicy) Allowed(context.Context, string) bool { return true }
