package scout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://Example.COM/Docs", "https://example.com/Docs"},
		{"strips default https port", "https://example.com:443/api", "https://example.com/api"},
		{"strips default http port", "http://example.com:80/api", "http://example.com/api"},
		{"keeps explicit port", "https://example.com:8443/api", "https://example.com:8443/api"},
		{"drops fragment", "https://example.com/docs#auth", "https://example.com/docs"},
		{"trims trailing slash", "https://example.com/docs/", "https://example.com/docs"},
		{"keeps root slash", "https://example.com/", "https://example.com/"},
		{"adds root path", "https://example.com", "https://example.com/"},
		{"sorts query params", "https://example.com/search?b=2&a=1", "https://example.com/search?a=1&b=2"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeURL(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// Normalizing an already-normalized URL must be a no-op, otherwise the
// visited set and cache keys drift apart.
func TestNormalizeURLIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"HTTP://Example.com:80/a/b/?z=1&a=2#frag",
		"https://api.example.com/docs/",
		"https://example.com",
	}
	for _, in := range inputs {
		once, err := NormalizeURL(in)
		require.NoError(t, err)
		twice, err := NormalizeURL(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeURLRejectsRelative(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "/docs", "example.com/docs"} {
		_, err := NormalizeURL(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestSameHost(t *testing.T) {
	t.Parallel()

	assert.True(t, SameHost("https://example.com/a", "http://EXAMPLE.com/b"))
	assert.True(t, SameHost("https://example.com:8080/a", "https://example.com/b"))
	assert.False(t, SameHost("https://example.com/a", "https://docs.example.com/a"))
}

func TestResolveRef(t *testing.T) {
	t.Parallel()

	base := "https://example.com/docs/guide"
	assert.Equal(t, "https://example.com/docs/api", ResolveRef(base, "/docs/api"))
	assert.Equal(t, "https://example.com/docs/auth", ResolveRef(base, "auth"))
	assert.Equal(t, "https://other.com/x", ResolveRef(base, "https://other.com/x"))
	assert.Empty(t, ResolveRef(base, "#section"))
	assert.Empty(t, ResolveRef(base, "mailto:dev@example.com"))
	assert.Empty(t, ResolveRef(base, "javascript:void(0)"))
	assert.Empty(t, ResolveRef(base, "ftp://example.com/file"))
}
