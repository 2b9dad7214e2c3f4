package sqlguard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrymomot/storekit/pkg/schema"
)

var (
	// schemaToken matches anything that looks like a tenant schema, including
	// the hyphen form, mixed case and identifier characters glued to either end.
	// It runs on the raw text, so comments and literals are covered too.
	schemaToken = regexp.MustCompile(`(?i)[\w$]*tenant_[0-9a-f]{8}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{4}[-_][0-9a-f]{12}[\w$]*`)

	// unicodeEscape matches U&'...' strings and U&"..." identifiers, which
	// can spell any name without it appearing in the text.
	unicodeEscape = regexp.MustCompile(`(?i)u&['"]`)

	// sessionKeyword matches names that read or change the search path, in
	// any position, including inside literals passed to dynamic SQL.
	sessionKeyword = regexp.MustCompile(`(?i)search_path|set_config`)
)

// globalSchemas are shared by every tenant and never reachable from a
// tenant-scoped connection.
var globalSchemas = map[string]struct{}{
	"public":             {},
	"pg_catalog":         {},
	"information_schema": {},
	"pg_toast":           {},
}

// Validator checks SQL text against the schema a request is bound to.
// It is safe for concurrent use.
type Validator struct {
	tables map[string]struct{}
}

// Option configures a Validator.
type Option func(*Validator)

// WithTables extends the table whitelist beyond schema.Tables.
func WithTables(tables ...string) Option {
	return func(v *Validator) {
		for _, t := range tables {
			if t = strings.TrimSpace(t); t != "" {
				v.tables[t] = struct{}{}
			}
		}
	}
}

// New returns a Validator whitelisting the per-tenant tables.
func New(opts ...Option) *Validator {
	v := &Validator{tables: make(map[string]struct{}, len(schema.Tables))}
	for _, t := range schema.Tables {
		v.tables[t] = struct{}{}
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = New()

// Validate checks sql with the default whitelist.
func Validate(sql string, expected schema.Name) error {
	return defaultValidator.Validate(sql, expected)
}

// Validate returns nil when sql may run on a connection scoped to expected.
// Every returned error wraps ErrRejected and one reason sentinel.
func (v *Validator) Validate(sql string, expected schema.Name) error {
	if !expected.Valid() {
		return errors.Join(ErrRejected, ErrInvalidSchema)
	}

	for _, token := range schemaToken.FindAllString(sql, -1) {
		if token != string(expected) {
			return errors.Join(ErrRejected, ErrCrossTenant, fmt.Errorf("foreign schema reference %q", token))
		}
	}

	if unicodeEscape.MatchString(sql) {
		return errors.Join(ErrRejected, ErrObfuscated, errors.New("unicode escape"))
	}

	tokens, err := lex(sql)
	if err != nil {
		return errors.Join(ErrRejected, ErrObfuscated, err)
	}

	if err := v.checkTokens(tokens, expected); err != nil {
		return err
	}

	if m := sessionKeyword.FindString(sql); m != "" {
		return errors.Join(ErrRejected, ErrSessionState, fmt.Errorf("%q", m))
	}

	return nil
}

func (v *Validator) checkTokens(tokens []token, expected schema.Name) error {
	for i, tok := range tokens {
		if tok.kind != tokIdent {
			continue
		}

		if !tok.quoted {
			if err := checkSessionStatement(tokens, i); err != nil {
				return err
			}
		}

		qualified := i+2 < len(tokens) && tokens[i+1].kind == tokDot && tokens[i+2].kind == tokIdent
		if qualified && tok.text == string(expected) {
			table := tokens[i+2].text
			if _, ok := v.tables[table]; !ok {
				return errors.Join(ErrRejected, ErrUnvettedTable, fmt.Errorf("table %q", table))
			}
			continue
		}

		afterDot := i > 0 && tokens[i-1].kind == tokDot
		if isCatalogName(tok.text) && (qualified || !afterDot) {
			return errors.Join(ErrRejected, ErrCatalogAccess, fmt.Errorf("%q", tok.text))
		}
	}
	return nil
}

// checkSessionStatement rejects SET/RESET/DISCARD forms that move the
// connection away from the tenant schema or the application role.
func checkSessionStatement(tokens []token, i int) error {
	next := func(k int) string {
		if i+k < len(tokens) && tokens[i+k].kind == tokIdent && !tokens[i+k].quoted {
			return tokens[i+k].text
		}
		return ""
	}

	var target string
	switch tokens[i].text {
	case "set":
		target = next(1)
		if target == "session" || target == "local" {
			target = next(2)
		}
		switch target {
		case "search_path", "schema", "role", "authorization":
		default:
			return nil
		}
	case "reset":
		switch target = next(1); target {
		case "search_path", "all", "role", "session":
		default:
			return nil
		}
	case "discard":
		target = next(1)
	default:
		return nil
	}

	return errors.Join(ErrRejected, ErrSessionState, fmt.Errorf("%s %s", tokens[i].text, target))
}

func isCatalogName(name string) bool {
	if _, ok := globalSchemas[name]; ok {
		return true
	}
	return strings.HasPrefix(name, "pg_")
}
