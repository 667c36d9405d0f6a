// Package blocklist rejects requests matching known attack signatures.
// It is a cheap defense-in-depth filter for automated scanner traffic, not a
// substitute for parameterized queries or output encoding downstream; false
// negatives are expected and fine.
package blocklist

import (
	"regexp"
	"strings"
)

type signature struct {
	name string
	re   *regexp.Regexp
}

// Evaluated in order; any match is a rejection, the first match names the
// signature for logging.
var signatures = []signature{
	{"path-traversal", regexp.MustCompile(`\.\.[/\\]`)},
	{"sensitive-dotfile", regexp.MustCompile(`(?i)/\.(env|git|ssh|aws|htpasswd|htaccess)`)},
	{"script-injection", regexp.MustCompile(`(?i)<script[^>]*>`)},
	{"sql-select", regexp.MustCompile(`(?i)\bselect\b.+\bfrom\b`)},
	{"sql-union", regexp.MustCompile(`(?i)\bunion\b.+\bselect\b`)},
	{"sql-tautology", regexp.MustCompile(`(?i)\b(or|and)\b\s+\d+\s*=\s*\d+`)},
}

// Paths this application never serves but scanners probe constantly.
// Matched by literal case-insensitive prefix, independent of the regex set.
var attackPathPrefixes = []string{
	"/wp-admin",
	"/wp-login",
	"/wp-content",
	"/xmlrpc.php",
	"/phpmyadmin",
	"/admin.php",
	"/cgi-bin",
	"/vendor/phpunit",
	"/actuator",
}

// IsBlocked reports whether the raw URL or path matches any attack
// signature.
func IsBlocked(rawURL, path string) bool {
	_, blocked := Match(rawURL, path)
	return blocked
}

// Match checks the raw URL and path against every signature and returns the
// name of the first match. The name is for server-side logs only; it is
// never echoed to the client.
func Match(rawURL, path string) (string, bool) {
	for _, sig := range signatures {
		if sig.re.MatchString(rawURL) || sig.re.MatchString(path) {
			return sig.name, true
		}
	}
	return "", false
}

// IsAttackPath reports whether path starts with a known probe prefix.
// Callers should answer these with 404, not 403, to avoid confirming the
// path exists.
func IsAttackPath(path string) bool {
	lower := strings.ToLower(path)
	for _, prefix := range attackPathPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
