package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const (
	// MaxKeyLength keeps tenant keys DNS-label sized.
	MaxKeyLength = 63
)

// keyPattern matches DNS-safe tenant keys: alphanumeric start, hyphens allowed.
var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// Resolver extracts a tenant identifier from an HTTP request.
// Returns an empty string when the request carries no identifier.
type Resolver func(r *http.Request) (string, error)

func validKey(key string) bool {
	return key != "" && len(key) <= MaxKeyLength && keyPattern.MatchString(key)
}

// NewSubdomainResolver extracts the tenant key from the request hostname.
// The resolver is total: malformed hosts yield an empty identifier, never
// an error, since it runs on every request.
//
// Rules, in order:
//   - a trailing port is stripped
//   - hosts ending in ".localhost" yield the first label (development)
//   - the root domain itself, or "www." + root, yields no tenant
//   - hosts with more than two dot-separated labels yield the first label
//   - anything else yields no tenant
func NewSubdomainResolver(rootDomain string) Resolver {
	root := strings.ToLower(strings.TrimSpace(rootDomain))

	return func(req *http.Request) (string, error) {
		host := strings.ToLower(req.Host)
		if idx := strings.LastIndex(host, ":"); idx != -1 {
			host = host[:idx]
		}
		if host == "" {
			return "", nil
		}

		if strings.HasSuffix(host, ".localhost") {
			label := strings.SplitN(host, ".", 2)[0]
			if !validKey(label) {
				return "", nil
			}
			return label, nil
		}

		if root != "" && (host == root || host == "www."+root) {
			return "", nil
		}

		labels := strings.Split(host, ".")
		if len(labels) > 2 {
			label := labels[0]
			if label == "www" {
				label = labels[1]
			}
			if !validKey(label) {
				return "", nil
			}
			return label, nil
		}

		return "", nil
	}
}

// NewHeaderResolver extracts the tenant identifier from an HTTP header.
// Defaults to "X-Tenant-Key" when headerName is empty.
func NewHeaderResolver(headerName string) Resolver {
	if headerName == "" {
		headerName = "X-Tenant-Key"
	}

	return func(req *http.Request) (string, error) {
		value := strings.TrimSpace(req.Header.Get(headerName))
		if value == "" {
			return "", nil
		}
		if !validKey(value) {
			return "", fmt.Errorf("%w: header %s", ErrInvalidIdentifier, headerName)
		}
		return value, nil
	}
}

// NewAuthResolver extracts the tenant identifier from an authenticated
// principal attached to the request, e.g. the tenant association stored
// in a session or a verified token.
func NewAuthResolver(fromRequest func(r *http.Request) (string, error)) Resolver {
	return func(req *http.Request) (string, error) {
		if fromRequest == nil {
			return "", errors.New("auth resolver: lookup function not configured")
		}
		key, err := fromRequest(req)
		if err != nil {
			return "", fmt.Errorf("auth resolver: %w", err)
		}
		return strings.TrimSpace(key), nil
	}
}

// NewStaticResolver always yields the given identifier. Used for
// caller-supplied fallbacks and environment defaults at the end of a
// resolver chain.
func NewStaticResolver(key string) Resolver {
	key = strings.TrimSpace(key)
	return func(*http.Request) (string, error) {
		return key, nil
	}
}

// NewChainResolver tries resolvers in order and returns the first
// non-empty identifier. Resolver errors abort the chain immediately so
// an explicitly malformed header is rejected rather than silently
// falling through to a weaker source.
func NewChainResolver(resolvers ...Resolver) Resolver {
	return func(r *http.Request) (string, error) {
		for _, resolve := range resolvers {
			id, err := resolve(r)
			if err != nil {
				return "", err
			}
			if id != "" {
				return id, nil
			}
		}
		return "", nil
	}
}
