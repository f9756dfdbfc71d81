// Package namespace maps producing-side namespaces to the namespaces used on
// the consuming side.
package namespace

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Alia5/interopgen/internal/codegen/meta"
)

// ErrInvalidRule is returned when an override pattern does not compile.
var ErrInvalidRule = errors.New("invalid namespace rule")

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Resolver applies an ordered list of override rules; the first matching rule wins.
type Resolver struct {
	rules []rule
}

// New compiles rules in order.
func New(rules []meta.NamespaceRule) (*Resolver, error) {
	r := &Resolver{rules: make([]rule, 0, len(rules))}
	for i, nr := range rules {
		re, err := regexp.Compile(nr.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w #%d %q: %w", ErrInvalidRule, i, nr.Pattern, err)
		}
		r.rules = append(r.rules, rule{pattern: re, replacement: nr.Replacement})
	}
	return r, nil
}

// Resolve returns the target namespace for a source namespace.
// Empty input and rules rewriting to an empty string map to meta.GlobalSpace.
func (r *Resolver) Resolve(space string) string {
	space = strings.TrimSpace(space)
	if space == "" {
		return meta.GlobalSpace
	}
	if r != nil {
		for _, ru := range r.rules {
			if !ru.pattern.MatchString(space) {
				continue
			}
			space = ru.pattern.ReplaceAllString(space, ru.replacement)
			break
		}
	}
	if space == "" {
		return meta.GlobalSpace
	}
	return space
}

// Segments splits a target namespace into its nested scopes.
func Segments(space string) []string {
	return strings.Split(space, ".")
}

// AccessorPrefix joins a namespace into the underscored form used by generated accessor names.
func AccessorPrefix(space string) string {
	return strings.ReplaceAll(space, ".", "_")
}
