package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apiscout/apiscout/internal/scout"
)

func TestClassifyStrongURLAcceptsWithoutContent(t *testing.T) {
	t.Parallel()

	c := New()
	res := c.Classify("https://example.com/api/docs", scout.DocumentContent{})
	require.True(t, res.Accepted)
	assert.Equal(t, 0.95, res.Score)
	assert.Contains(t, res.Reasons, ReasonStrongURL)
}

func TestClassifyModerateURLNeedsKeywords(t *testing.T) {
	t.Parallel()

	c := New()
	url := "https://example.com/guides/intro"

	bare := c.Classify(url, scout.DocumentContent{CleanedText: "welcome to our product tour"})
	assert.False(t, bare.Accepted)

	withKeywords := c.Classify(url, scout.DocumentContent{
		CleanedText: "Send a request to the endpoint and read the response.",
	})
	require.True(t, withKeywords.Accepted)
	assert.Contains(t, withKeywords.Reasons, ReasonModerateURL)
	assert.Contains(t, withKeywords.Reasons, ReasonKeywords)
}

func TestClassifyKeywordDensityAlone(t *testing.T) {
	t.Parallel()

	c := New()
	res := c.Classify("https://example.com/changelog", scout.DocumentContent{
		CleanedText: "Each request returns a JSON response; set the header parameter before you POST.",
	})
	require.True(t, res.Accepted)
	assert.Contains(t, res.Reasons, ReasonKeywordDensity)
}

func TestClassifyEmbeddedSpec(t *testing.T) {
	t.Parallel()

	c := New()
	res := c.Classify("https://example.com/about", scout.DocumentContent{
		CodeSamples: []string{`{"openapi":"3.0.3","paths":{}}`},
	})
	require.True(t, res.Accepted)
	assert.Contains(t, res.Reasons, ReasonEmbeddedSpec)
	assert.Equal(t, 0.9, res.Score)
}

func TestClassifyRejectsPlainPage(t *testing.T) {
	t.Parallel()

	c := New()
	res := c.Classify("https://example.com/blog/hiring", scout.DocumentContent{
		CleanedText: "We are growing the team this year and opening two offices.",
	})
	assert.False(t, res.Accepted)
	assert.Zero(t, res.Score)
	assert.Empty(t, res.Reasons)
}

// The same (url, content) pair must always classify identically; discovery
// depends on that to keep reruns stable.
func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	c := New()
	url := "https://example.com/docs/rest-api"
	content := scout.DocumentContent{
		CleanedText: "Authentication headers are required for every API request and response.",
	}
	first := c.Classify(url, content)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(url, content))
	}
}

func TestLikelyAndStrongDocURL(t *testing.T) {
	t.Parallel()

	c := New()
	assert.True(t, c.StrongDocURL("https://example.com/api/reference"))
	assert.False(t, c.StrongDocURL("https://example.com/help"))
	assert.True(t, c.LikelyDocURL("https://example.com/help"))
	assert.False(t, c.LikelyDocURL("https://example.com/blog/post-1"))
}

func TestHasSpecMarkersYAML(t *testing.T) {
	t.Parallel()

	content := scout.DocumentContent{CleanedText: "openapi: 3.0.0\npaths:\n  /users:\n    get: {}\n"}
	assert.True(t, HasSpecMarkers(content))

	assert.False(t, HasSpecMarkers(scout.DocumentContent{
		CleanedText: "our openapi journey began with broken paths",
	}))
}
