package permission

import (
	"sort"
	"strings"
)

// Set is a parsed permission tag. The API hands out a single free-form string
// ("ADMIN", "BASIC_STAFF", "INVENTORY,REPORTS"); Set splits it on commas and
// whitespace so it can be tested by membership.
type Set map[string]struct{}

// ParseSet splits tag into its permission names. Empty names are dropped.
func ParseSet(tag string) Set {
	fields := strings.FieldsFunc(tag, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	s := make(Set, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether name is in s.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Any reports whether s contains at least one of names.
func (s Set) Any(names ...string) bool {
	for _, n := range names {
		if s.Has(n) {
			return true
		}
	}
	return false
}

// Names returns the members of s in sorted order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
