// Package vrange interprets Cargo version requirements: parsing them into
// checkable ranges, extracting the minimum bound a range admits, and
// classifying how far behind a version is.
package vrange

import (
	"fmt"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"
)

// Range is a parsed version requirement. It keeps the raw text alongside
// the constraint because exact-requirement detection and minimum-bound
// extraction both work from the comparator tokens, not the matcher.
type Range struct {
	raw  string
	cons *masterminds.Constraints
}

// Parse builds a Range from raw Cargo requirement text. Bare versions are
// caret requirements in Cargo ("1.2" means ">=1.2.0, <2.0.0"), so tokens
// without an operator are normalized before handing them to the
// constraint parser.
func Parse(raw string) (*Range, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("vrange: empty requirement")
	}
	cons, err := masterminds.NewConstraint(normalizeCargo(raw))
	if err != nil {
		return nil, fmt.Errorf("vrange: parse %q: %w", raw, err)
	}
	return &Range{raw: raw, cons: cons}, nil
}

// Raw returns the requirement text as written in the manifest.
func (r *Range) Raw() string { return r.raw }

// Satisfied reports whether v matches the range. Prerelease versions only
// match when the range itself mentions a prerelease, per semver rules.
func (r *Range) Satisfied(v *masterminds.Version) bool {
	if r == nil || v == nil {
		return false
	}
	return r.cons.Check(v)
}

// MinimumBound returns the smallest version for which some comparator in
// some conjunction establishes a lower bound (after caret/tilde/bare
// normalization these are the "=", ">=", ">" comparators). A range with
// no lower bound at all ("<2.0.0") gets the implicit floor 0.0.0. Ties
// across disjunctions resolve to the global minimum.
func (r *Range) MinimumBound() *masterminds.Version {
	if r == nil {
		return nil
	}
	var min *masterminds.Version
	for _, conj := range strings.Split(r.raw, "||") {
		for _, tok := range strings.Split(conj, ",") {
			b := lowerBound(strings.TrimSpace(tok))
			if b == nil {
				continue
			}
			if min == nil || b.LessThan(min) {
				min = b
			}
		}
	}
	if min == nil {
		return masterminds.MustParse("0.0.0")
	}
	return min
}

// lowerBound extracts the lower bound a single comparator establishes,
// or nil when it only bounds from above.
func lowerBound(tok string) *masterminds.Version {
	switch {
	case tok == "" || tok == "*":
		return nil
	case strings.HasPrefix(tok, ">="):
		return coerce(tok[2:])
	case strings.HasPrefix(tok, "<=") || strings.HasPrefix(tok, "<"):
		return nil
	case strings.HasPrefix(tok, ">"):
		return coerce(tok[1:])
	case strings.HasPrefix(tok, "="):
		return coerce(tok[1:])
	case strings.HasPrefix(tok, "^") || strings.HasPrefix(tok, "~"):
		return coerce(tok[1:])
	default:
		// Bare version: caret semantics, bound is the version itself.
		return coerce(tok)
	}
}

// coerce parses a possibly short version form ("1", "1.2", "1.*") into a
// full version, filling missing or wildcard components with zero.
func coerce(s string) *masterminds.Version {
	s = strings.TrimSpace(s)
	for _, wc := range []string{".*", ".x", ".X"} {
		if idx := strings.Index(s, wc); idx >= 0 {
			s = s[:idx]
			break
		}
	}
	if s == "" || s == "*" || s == "x" || s == "X" {
		s = "0"
	}
	v, err := masterminds.NewVersion(s)
	if err != nil {
		return nil
	}
	return v
}

// normalizeCargo rewrites bare comparator tokens as caret requirements so
// the constraint matcher applies Cargo's default semantics.
func normalizeCargo(raw string) string {
	conjs := strings.Split(raw, "||")
	for i, conj := range conjs {
		toks := strings.Split(conj, ",")
		for j, tok := range toks {
			t := strings.TrimSpace(tok)
			if t == "" {
				continue
			}
			if t[0] >= '0' && t[0] <= '9' && !strings.ContainsAny(t, "*xX") {
				t = "^" + t
			}
			toks[j] = t
		}
		conjs[i] = strings.Join(toks, ", ")
	}
	return strings.Join(conjs, " || ")
}
