package tenant

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// DefaultHeader carries an explicit tenant subdomain.
const DefaultHeader = "X-Tenant-Subdomain"

// DefaultReserved are labels that never name a tenant.
var DefaultReserved = []string{"api", "www", "super-admin"}

// Resolver extracts a tenant subdomain candidate from an HTTP request.
type Resolver interface {
	// Resolve returns the candidate, or an empty string if the request
	// carries none.
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc is an adapter to allow the use of ordinary functions as Resolvers.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls the function.
func (f ResolverFunc) Resolve(r *http.Request) (string, error) {
	return f(r)
}

// HeaderResolver reads the candidate from a request header.
type HeaderResolver struct {
	HeaderName string
}

// NewHeaderResolver creates a header resolver. An empty name selects DefaultHeader.
func NewHeaderResolver(headerName string) *HeaderResolver {
	if headerName == "" {
		headerName = DefaultHeader
	}
	return &HeaderResolver{HeaderName: headerName}
}

// Resolve returns the trimmed, lowercased header value.
func (h *HeaderResolver) Resolve(r *http.Request) (string, error) {
	return normalize(r.Header.Get(h.HeaderName)), nil
}

// HostResolver extracts the leftmost label from a host name that ends with one
// of the configured domain suffixes, e.g. "acme" from "acme.platform.example".
// Only a single label in front of the suffix is accepted and reserved labels
// are ignored.
type HostResolver struct {
	Suffixes []string
	Reserved []string
	// Source selects what is inspected: the Host header, or the host part of
	// the URL found in another header such as Origin or Referer.
	Source func(r *http.Request) string
}

// NewHostResolver matches the request's Host header against suffixes.
func NewHostResolver(suffixes, reserved []string) *HostResolver {
	return &HostResolver{
		Suffixes: suffixes,
		Reserved: reserved,
		Source:   func(r *http.Request) string { return r.Host },
	}
}

// NewOriginResolver matches the host of the Origin header against domains.
func NewOriginResolver(domains, reserved []string) *HostResolver {
	return &HostResolver{
		Suffixes: domains,
		Reserved: reserved,
		Source:   urlHeader("Origin"),
	}
}

// NewRefererResolver matches the host of the Referer header against domains.
func NewRefererResolver(domains, reserved []string) *HostResolver {
	return &HostResolver{
		Suffixes: domains,
		Reserved: reserved,
		Source:   urlHeader("Referer"),
	}
}

// Resolve returns the subdomain label, or "" when the host does not match.
func (h *HostResolver) Resolve(r *http.Request) (string, error) {
	if h.Source == nil {
		return "", nil
	}
	return subdomainOf(h.Source(r), h.Suffixes, h.Reserved), nil
}

// CompositeResolver tries resolvers in order; the first non-empty result wins.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a new composite resolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

// Resolve tries each resolver in order, returning the first non-empty result.
func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error

	for _, resolver := range c.Resolvers {
		candidate, err := resolver.Resolve(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if candidate != "" {
			return candidate, nil
		}
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("composite resolver errors: %w", errors.Join(errs...))
	}

	return "", nil
}

// NewResolver builds the standard precedence chain:
// explicit header, then Origin, then Referer, then Host.
func NewResolver(cfg Config) Resolver {
	reserved := cfg.ReservedSubdomains
	if len(reserved) == 0 {
		reserved = DefaultReserved
	}
	return NewCompositeResolver(
		NewHeaderResolver(cfg.Header),
		NewOriginResolver(cfg.BaseDomains, reserved),
		NewRefererResolver(cfg.BaseDomains, reserved),
		NewHostResolver(cfg.HostSuffixes, reserved),
	)
}

func urlHeader(name string) func(r *http.Request) string {
	return func(r *http.Request) string {
		raw := strings.TrimSpace(r.Header.Get(name))
		if raw == "" || raw == "null" {
			return ""
		}
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return u.Host
	}
}

func subdomainOf(host string, suffixes, reserved []string) string {
	host = normalize(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return ""
	}

	for _, suffix := range suffixes {
		suffix = "." + strings.Trim(normalize(suffix), ".")
		if len(host) <= len(suffix) || !strings.HasSuffix(host, suffix) {
			continue
		}
		label := host[:len(host)-len(suffix)]
		if strings.Contains(label, ".") {
			continue
		}
		if isReserved(label, reserved) {
			return ""
		}
		return label
	}
	return ""
}

func isReserved(label string, reserved []string) bool {
	for _, r := range reserved {
		if strings.EqualFold(label, r) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
