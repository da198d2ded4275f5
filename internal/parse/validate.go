// File: internal/parse/validate.go
package parse

import (
	"regexp"
	"strings"
)

// Validation gates applied before any user-derived value reaches a mutating
// adapter call. Read-only lookups tolerate unvalidated input; the upstream
// simply reports not-found.
var (
	projectNameRe   = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,99}$`)
	componentNameRe = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]{0,49}$`)
	businessNameRe  = regexp.MustCompile(`^[\p{L}0-9 '",.-]{1,100}$`)
	envKeyRe        = regexp.MustCompile(`^[A-Z][A-Z0-9_]{0,63}$`)
	domainNameRe    = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{0,252}$`)
)

// ValidateProjectName accepts lowercase project/repo identifiers: a leading
// alphanumeric followed by up to 99 alphanumerics or hyphens.
func ValidateProjectName(name string) bool {
	return projectNameRe.MatchString(name)
}

// ValidateComponentName accepts capitalized-word component names such as
// "HeroSection": an uppercase letter followed by up to 49 alphanumerics.
func ValidateComponentName(name string) bool {
	return componentNameRe.MatchString(name)
}

// ValidateBusinessName accepts 1-100 characters of letters (any script, which
// covers accented Latin), digits, space, quotes, comma, period, and hyphen.
func ValidateBusinessName(name string) bool {
	return businessNameRe.MatchString(name)
}

// ValidateEnvKey accepts conventional environment variable names.
func ValidateEnvKey(name string) bool {
	return envKeyRe.MatchString(name)
}

// ValidateDomainName accepts plausible DNS names with at least one dot.
func ValidateDomainName(name string) bool {
	return domainNameRe.MatchString(name) && strings.Contains(name, ".")
}
