package sqlguard

import (
	"errors"
	"strings"
)

type tokenKind uint8

const (
	tokIdent tokenKind = iota
	tokDot
	tokOther
)

// token is a lexical unit relevant to the checks. Literals and comments are
// dropped. Identifier text is case folded when unquoted and kept exact,
// with doubled quotes collapsed, when quoted.
type token struct {
	kind   tokenKind
	text   string
	quoted bool
}

var (
	errUnterminatedString  = errors.New("unterminated string literal")
	errUnterminatedIdent   = errors.New("unterminated quoted identifier")
	errEmptyIdent          = errors.New("zero-length quoted identifier")
	errUnterminatedComment = errors.New("unterminated block comment")
	errUnterminatedDollar  = errors.New("unterminated dollar-quoted string")
)

// lex splits sql into identifiers, dots and other tokens. Anything it cannot
// close fails the whole statement.
func lex(sql string) ([]token, error) {
	var (
		tokens []token
		i      int
		n      = len(sql)
	)

	for i < n {
		c := sql[i]
		switch {
		case isSpace(c):
			i++

		case c == '-' && i+1 < n && sql[i+1] == '-':
			for i < n && sql[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && sql[i+1] == '*':
			end, err := skipBlockComment(sql, i)
			if err != nil {
				return nil, err
			}
			i = end

		case c == '\'':
			end, err := skipString(sql, i+1, false)
			if err != nil {
				return nil, err
			}
			i = end

		case c == '"':
			text, end, err := quotedIdent(sql, i+1)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokIdent, text: text, quoted: true})
			i = end

		case c == '$':
			end, err := skipDollar(sql, i)
			if err != nil {
				return nil, err
			}
			if end > i+1 && sql[i+1] >= '0' && sql[i+1] <= '9' {
				tokens = append(tokens, token{kind: tokOther, text: sql[i:end]})
			}
			i = end

		case c == '.':
			tokens = append(tokens, token{kind: tokDot, text: "."})
			i++

		case c >= '0' && c <= '9':
			start := i
			for i < n && (isIdentPart(sql[i]) || (sql[i] == '.' && i+1 < n && sql[i+1] >= '0' && sql[i+1] <= '9')) {
				i++
			}
			tokens = append(tokens, token{kind: tokOther, text: sql[start:i]})

		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(sql[i]) {
				i++
			}
			word := sql[start:i]
			// E'...' accepts backslash escapes, including \'
			if i < n && sql[i] == '\'' && (word == "e" || word == "E") {
				end, err := skipString(sql, i+1, true)
				if err != nil {
					return nil, err
				}
				i = end
				continue
			}
			tokens = append(tokens, token{kind: tokIdent, text: strings.ToLower(word)})

		default:
			tokens = append(tokens, token{kind: tokOther, text: sql[i : i+1]})
			i++
		}
	}

	return tokens, nil
}

// skipString returns the offset just past the closing quote of a literal
// whose body starts at i.
func skipString(sql string, i int, backslash bool) (int, error) {
	for i < len(sql) {
		switch sql[i] {
		case '\\':
			if backslash {
				i += 2
				continue
			}
		case '\'':
			if i+1 < len(sql) && sql[i+1] == '\'' {
				i += 2
				continue
			}
			return i + 1, nil
		}
		i++
	}
	return 0, errUnterminatedString
}

func quotedIdent(sql string, i int) (string, int, error) {
	var b strings.Builder
	for i < len(sql) {
		if sql[i] == '"' {
			if i+1 < len(sql) && sql[i+1] == '"' {
				b.WriteByte('"')
				i += 2
				continue
			}
			if b.Len() == 0 {
				return "", 0, errEmptyIdent
			}
			return b.String(), i + 1, nil
		}
		b.WriteByte(sql[i])
		i++
	}
	return "", 0, errUnterminatedIdent
}

// skipBlockComment handles nesting the way Postgres does.
func skipBlockComment(sql string, i int) (int, error) {
	depth := 0
	for i < len(sql) {
		switch {
		case strings.HasPrefix(sql[i:], "/*"):
			depth++
			i += 2
		case strings.HasPrefix(sql[i:], "*/"):
			depth--
			i += 2
			if depth == 0 {
				return i, nil
			}
		default:
			i++
		}
	}
	return 0, errUnterminatedComment
}

// skipDollar consumes a positional parameter ($1) or a dollar-quoted string
// ($$...$$, $tag$...$tag$). A lone $ is consumed as an operator character.
func skipDollar(sql string, i int) (int, error) {
	j := i + 1
	if j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
		for j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
			j++
		}
		return j, nil
	}

	if j < len(sql) && isIdentStart(sql[j]) {
		for j < len(sql) && isIdentPart(sql[j]) && sql[j] != '$' {
			j++
		}
	}
	if j >= len(sql) || sql[j] != '$' {
		return i + 1, nil
	}

	tag := sql[i : j+1]
	end := strings.Index(sql[j+1:], tag)
	if end < 0 {
		return 0, errUnterminatedDollar
	}
	return j + 1 + end + len(tag), nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '$'
}
