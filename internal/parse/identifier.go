// File: internal/parse/identifier.go
package parse

import "regexp"

var (
	deployURLRe = regexp.MustCompile(`(?i)^https?://([a-z0-9-]+)\.vercel\.app(?:/\S*)?$`)
	// Deployment hosts carry a generated infix after the project name:
	// <project>-<hash>[-<team>].vercel.app. The hash is 8+ alphanumerics.
	deployHashRe = regexp.MustCompile(`^(.+?)-[a-z0-9]{8,}(?:-[a-z0-9-]+)?$`)
	sourceURLRe  = regexp.MustCompile(`(?i)^https?://[^/\s]+/[^/\s]+/([^/\s]+?)(?:\.git)?/?$`)
	repoPathRe   = regexp.MustCompile(`^[^/\s]+/([^/\s]+?)(?:\.git)?$`)
)

// ExtractIdentifier derives a canonical project/repo identifier from a raw
// token, a deployment-platform URL, or a source-control URL. Pure and total:
// unrecognized input is returned unchanged, so the function is idempotent.
func ExtractIdentifier(token string) string {
	if m := deployURLRe.FindStringSubmatch(token); m != nil {
		host := m[1]
		if h := deployHashRe.FindStringSubmatch(host); h != nil {
			return h[1]
		}
		return host
	}
	if m := sourceURLRe.FindStringSubmatch(token); m != nil {
		return m[1]
	}
	if m := repoPathRe.FindStringSubmatch(token); m != nil {
		return m[1]
	}
	return token
}
