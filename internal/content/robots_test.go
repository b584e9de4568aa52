package content

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRobotsDisabledAllowsEverything(t *testing.T) {
	policy := NewRobotsEnforcer(false, "apiscout-test", time.Second, zap.NewNop())
	assert.True(t, policy.Allowed(context.Background(), "https://example.com/private"))
}

func TestRobotsEnforcesDisallow(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/robots.txt", r.URL.Path)
		fetches.Add(1)
		fmt.Fprintln(w, "User-agent: *\nDisallow: /internal")
	}))
	defer srv.Close()

	policy := NewRobotsEnforcer(true, "apiscout-test", time.Second, zap.NewNop())
	ctx := context.Background()

	assert.True(t, policy.Allowed(ctx, srv.URL+"/docs/api"))
	assert.False(t, policy.Allowed(ctx, srv.URL+"/internal/admin"))
	assert.False(t, policy.Allowed(ctx, srv.URL+"/internal"))
	assert.Equal(t, int32(1), fetches.Load(), "rules resolved once per host")
}

func TestRobotsAgentSpecificGroup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "User-agent: apiscout-test\nDisallow: /\n\nUser-agent: *\nDisallow:")
	}))
	defer srv.Close()

	policy := NewRobotsEnforcer(true, "apiscout-test", time.Second, zap.NewNop())
	assert.False(t, policy.Allowed(context.Background(), srv.URL+"/docs"))

	other := NewRobotsEnforcer(true, "somebody-else", time.Second, zap.NewNop())
	assert.True(t, other.Allowed(context.Background(), srv.URL+"/docs"))
}

func TestRobotsFetchFailureTreatsHostAsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	policy := NewRobotsEnforcer(true, "apiscout-test", time.Second, zap.NewNop())
	assert.True(t, policy.Allowed(context.Background(), srv.URL+"/docs"))
}

func TestRobotsMalformedURLDenied(t *testing.T) {
	policy := NewRobotsEnforcer(true, "apiscout-test", time.Second, zap.NewNop())
	assert.False(t, policy.Allowed(context.Background(), "://bad"))
}
