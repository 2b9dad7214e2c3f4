package scopeguard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Route describes the access rules of one handler.
type Route struct {
	Name   string `yaml:"name"`
	Method string `yaml:"method,omitempty"`
	Path   string `yaml:"path,omitempty"`
	// Public routes may be called anonymously.
	Public bool `yaml:"public"`
	// SkipTenantScope routes are not subject to tenant matching at all,
	// e.g. provisioning and platform administration.
	SkipTenantScope bool `yaml:"skip_tenant_scope"`
	// RequiresAuth marks routes that always need a principal.
	RequiresAuth bool `yaml:"requires_auth"`
}

// AllowsAnonymous reports whether a request without a principal may pass.
func (r Route) AllowsAnonymous() bool {
	return r.Public && !r.RequiresAuth
}

// Table is an immutable set of routes indexed by name.
type Table struct {
	routes map[string]Route
	order  []string
}

type tableFile struct {
	Routes []Route `yaml:"routes"`
}

// NewTable builds a table, rejecting unnamed, duplicate or contradictory routes.
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		if r.Name == "" {
			return nil, errors.Join(ErrInvalidRoute, errors.New("route name is empty"))
		}
		if _, ok := t.routes[r.Name]; ok {
			return nil, errors.Join(ErrInvalidRoute, fmt.Errorf("duplicate route %q", r.Name))
		}
		if r.Public && r.RequiresAuth {
			return nil, errors.Join(ErrInvalidRoute, fmt.Errorf("route %q is both public and requires auth", r.Name))
		}
		t.routes[r.Name] = r
		t.order = append(t.order, r.Name)
	}
	return t, nil
}

// LoadTable reads a YAML document of the form
//
//	routes:
//	  - name: storefront.products
//	    public: true
func LoadTable(r io.Reader) (*Table, error) {
	var f tableFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidRoute, fmt.Errorf("yaml parse: %w", err))
	}
	return NewTable(f.Routes...)
}

// LoadTableFile reads a route table from a YAML file.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open route table: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

// Lookup returns the route registered under name.
func (t *Table) Lookup(name string) (Route, bool) {
	r, ok := t.routes[name]
	return r, ok
}

// Routes returns all routes in declaration order.
func (t *Table) Routes() []Route {
	out := make([]Route, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.routes[name])
	}
	return out
}
