// Package pattern implements path pattern matching for gateway endpoints.
//
// Patterns are URL paths with optional named parameters in colon notation,
// e.g. "/api/users/:id/orders/:orderId". A parameter matches exactly one
// path segment. Matching is anchored: the whole path must match the whole
// pattern.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nocodenation/appgateway/errors"
)

// paramName matches a parameter identifier after the colon
var paramName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*`)

// Matcher is a compiled path pattern. Safe for concurrent use.
type Matcher struct {
	pattern string
	regex   *regexp.Regexp
	params  []string
}

// Compile parses a path pattern into a Matcher.
// Returns an invalid-classified error for malformed patterns.
func Compile(pat string) (*Matcher, error) {
	params, regexStr, err := parse(pat)
	if err != nil {
		return nil, err
	}

	regex, err := regexp.Compile(regexStr)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Matcher", "Compile", "compile pattern regex")
	}

	return &Matcher{
		pattern: pat,
		regex:   regex,
		params:  params,
	}, nil
}

// Validate checks a pattern without building a Matcher.
func Validate(pat string) error {
	_, _, err := parse(pat)
	return err
}

// parse extracts parameter names and builds the anchored regex source.
// Each ":name" placeholder becomes a single-segment capture group; literal
// text is quoted.
func parse(pat string) (params []string, regexStr string, err error) {
	if pat == "" {
		return nil, "", errors.WrapInvalid(errors.ErrInvalidPattern, "Matcher", "Compile",
			"pattern cannot be empty")
	}
	if !strings.HasPrefix(pat, "/") {
		return nil, "", errors.WrapInvalid(errors.ErrInvalidPattern, "Matcher", "Compile",
			fmt.Sprintf("pattern must start with '/': %s", pat))
	}
	if strings.Contains(pat, "//") {
		return nil, "", errors.WrapInvalid(errors.ErrInvalidPattern, "Matcher", "Compile",
			fmt.Sprintf("pattern contains consecutive slashes: %s", pat))
	}

	var sb strings.Builder
	sb.WriteString("^")

	seen := make(map[string]bool)
	rest := pat
	for {
		idx := strings.IndexByte(rest, ':')
		if idx < 0 {
			sb.WriteString(regexp.QuoteMeta(rest))
			break
		}

		sb.WriteString(regexp.QuoteMeta(rest[:idx]))
		rest = rest[idx+1:]

		name := paramName.FindString(rest)
		if name == "" {
			return nil, "", errors.WrapInvalid(errors.ErrInvalidPattern, "Matcher", "Compile",
				fmt.Sprintf("parameter name missing after ':' in pattern %s", pat))
		}
		if seen[name] {
			return nil, "", errors.WrapInvalid(errors.ErrInvalidPattern, "Matcher", "Compile",
				fmt.Sprintf("duplicate parameter name %q in pattern %s", name, pat))
		}
		seen[name] = true
		params = append(params, name)
		sb.WriteString("([^/]+)")
		rest = rest[len(name):]
	}

	sb.WriteString("$")
	return params, sb.String(), nil
}

// Match tests a request path against the pattern. On success it returns the
// extracted path parameters (empty map for patterns without parameters).
func (m *Matcher) Match(path string) (map[string]string, bool) {
	groups := m.regex.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}

	values := make(map[string]string, len(m.params))
	for i, name := range m.params {
		values[name] = groups[i+1]
	}
	return values, true
}

// Pattern returns the original pattern string.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// ParameterNames returns the parameter names in pattern order.
func (m *Matcher) ParameterNames() []string {
	names := make([]string, len(m.params))
	copy(names, m.params)
	return names
}

// ToDisplayForm converts colon notation to OpenAPI brace notation:
// "/users/:id" becomes "/users/{id}".
func ToDisplayForm(pat string) string {
	var sb strings.Builder
	rest := pat
	for {
		idx := strings.IndexByte(rest, ':')
		if idx < 0 {
			sb.WriteString(rest)
			break
		}

		sb.WriteString(rest[:idx])
		rest = rest[idx+1:]

		name := paramName.FindString(rest)
		if name == "" {
			sb.WriteString(":")
			continue
		}
		sb.WriteString("{" + name + "}")
		rest = rest[len(name):]
	}
	return sb.String()
}
