package discovery

// seedPaths are common documentation path suffixes tried directly against the
// base host before any crawling happens.
var seedPaths = []string{
	"/api/docs",
	"/api-docs",
	"/api/documentation",
	"/docs",
	"/docs/api",
	"/documentation",
	"/documentation/api",
	"/developers",
	"/developer",
	"/dev/docs",
	"/reference",
	"/api-reference",
	"/api/reference",
	"/guides/api",
	"/v1/docs",
	"/v2/docs",
	"/api/v1/docs",
	"/api/v2/docs",
	"/guide",
	"/guides",
	"/tutorial",
	"/tutorials",
	"/getting-started",
	"/quickstart",
	"/quick-start",
	"/how-to",
	"/api-guide",
	"/rest-api",
	"/graphql",
	"/resources",
	"/help",
	"/support/api",
}
