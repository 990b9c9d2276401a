// Package version parses and orders the version segments found in a local
// Maven repository layout (<group>/<artifact>/<version>).
//
// A version is `tok+ ('-' tok+)? ('+' tok+)?` and must start with a digit.
// Tokens are maximal runs of digits or maximal runs of anything that is not a
// digit or one of the separators '.', '-' and '+'.
//
// Ordering:
//
//   - main sequences are compared token by token; numbers numerically, strings
//     byte-wise, a number against a string by its decimal text
//   - trailing numeric zeros are insignificant, so 1.0 equals 1.0.0; any other
//     trailing token makes the longer sequence greater
//   - a version with a pre-release part sorts before the same version without
//     one (2.0.0-beta < 2.0.0)
//   - pre-release parts, then build parts, are compared like main sequences
//
// A '+' in the main sequence always starts the build part, so 1+b is the
// release 1 with build b and sorts after 1. java.lang.module's
// ModuleDescriptor.Version instead files such a suffix under pre-release
// and orders 1+b before 1.
package version

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every ParseError.
var ErrInvalid = errors.New("invalid version")

// ParseError reports a path segment that is not a version.
type ParseError struct {
	Segment string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%q: %s", e.Segment, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalid
}

// token is one element of a version sequence. Numeric tokens keep their
// digits with leading zeros stripped so they compare without overflow.
type token struct {
	text    string
	numeric bool
}

func (t token) compare(o token) int {
	if t.numeric && o.numeric {
		if len(t.text) != len(o.text) {
			if len(t.text) < len(o.text) {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(t.text, o.text)
}

func (t token) isZero() bool {
	return t.numeric && t.text == "0"
}

// Version is a parsed repository version. The zero value is not a valid
// version; obtain one from Parse.
type Version struct {
	raw   string
	seq   []token
	pre   []token
	build []token
}

// Parse parses a single path segment.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, &ParseError{Segment: s, Reason: "empty version string"}
	}
	if !isDigit(s[0]) {
		return Version{}, &ParseError{Segment: s, Reason: "does not start with a number"}
	}

	v := Version{raw: s}
	part := &v.seq
	var inPre, inBuild bool

	i := takeNumber(s, 0, part)
	for i < len(s) {
		c := s[i]
		switch {
		case c == '.':
			i++
		case c == '-' && !inPre && !inBuild:
			inPre = true
			part = &v.pre
			i++
		case c == '+' && !inBuild:
			inBuild = true
			part = &v.build
			i++
		case c == '-' || c == '+':
			i++
		case isDigit(c):
			i = takeNumber(s, i, part)
		default:
			i = takeString(s, i, part)
		}
	}

	if inPre && len(v.pre) == 0 {
		return Version{}, &ParseError{Segment: s, Reason: "empty pre-release"}
	}
	if inBuild && len(v.build) == 0 {
		return Version{}, &ParseError{Segment: s, Reason: "empty build"}
	}
	return v, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSeparator(c byte) bool {
	return c == '.' || c == '-' || c == '+'
}

func takeNumber(s string, i int, acc *[]token) int {
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	digits := strings.TrimLeft(s[start:i], "0")
	if digits == "" {
		digits = "0"
	}
	*acc = append(*acc, token{text: digits, numeric: true})
	return i
}

func takeString(s string, i int, acc *[]token) int {
	start := i
	for i < len(s) && !isDigit(s[i]) && !isSeparator(s[i]) {
		i++
	}
	*acc = append(*acc, token{text: s[start:i]})
	return i
}

// String returns the segment the version was parsed from.
func (v Version) String() string {
	return v.raw
}

// Compare returns -1, 0 or +1 as v is less than, equal to or greater than o.
func (v Version) Compare(o Version) int {
	if c := compareTokens(v.seq, o.seq); c != 0 {
		return c
	}
	switch {
	case len(v.pre) == 0 && len(o.pre) > 0:
		return 1
	case len(v.pre) > 0 && len(o.pre) == 0:
		return -1
	}
	if c := compareTokens(v.pre, o.pre); c != 0 {
		return c
	}
	return compareTokens(v.build, o.build)
}

func compareTokens(a, b []token) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := a[i].compare(b[i]); c != 0 {
			return c
		}
	}

	rest, sign := a, 1
	if len(b) > len(a) {
		rest, sign = b, -1
	}
	for _, t := range rest[n:] {
		if !t.isZero() {
			return sign
		}
	}
	return 0
}
