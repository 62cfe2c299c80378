// Package slug turns arbitrary strings into safe lowercase
// identifiers. The provisioner uses it to derive tenant database names
// from merchant subdomains, so the mapping must be deterministic.
package slug

import "strings"

type config struct {
	maxLength int
	separator string
}

// Option configures slug generation.
type Option func(*config)

// MaxLength truncates the slug to at most n characters.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Separator replaces runs of unsafe characters. Default is "-".
func Separator(s string) Option {
	return func(c *config) { c.separator = s }
}

// Make normalizes s into a lowercase identifier of ASCII letters,
// digits and the separator. Consecutive unsafe characters collapse
// into a single separator; leading and trailing separators are
// dropped. Returns "" when nothing safe remains.
func Make(s string, opts ...Option) string {
	cfg := &config{separator: "-"}
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	b.Grow(len(s))

	lastWasSep := true // suppress leading separator
	count := 0
	for _, r := range s {
		if cfg.maxLength > 0 && count >= cfg.maxLength {
			break
		}

		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasSep = false
			count++
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			lastWasSep = false
			count++
		default:
			if lastWasSep {
				continue
			}
			if cfg.maxLength > 0 && count+len(cfg.separator) > cfg.maxLength {
				continue
			}
			b.WriteString(cfg.separator)
			lastWasSep = true
			count += len(cfg.separator)
		}
	}

	return strings.TrimSuffix(b.String(), cfg.separator)
}
