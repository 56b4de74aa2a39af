package pathfilter

import (
	"path"
	"strings"
)

// RuleSet is an ordered list of ignore rules.
type RuleSet struct {
	rules    []Rule
	negated  []Rule
	excludes []Rule
}

// NewRuleSet parses patterns in order. Blank lines and lines starting with
// '#' are skipped.
func NewRuleSet(patterns []string) (*RuleSet, error) {
	rs := &RuleSet{}
	for _, pattern := range patterns {
		trimmed := strings.TrimSpace(pattern)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		rule, err := ParseRule(pattern)
		if err != nil {
			return nil, err
		}
		rs.rules = append(rs.rules, rule)
		if rule.Kind == RuleNegated {
			rs.negated = append(rs.negated, rule)
		} else {
			rs.excludes = append(rs.excludes, rule)
		}
	}
	return rs, nil
}

// MustRuleSet is like NewRuleSet but panics on a malformed rule.
func MustRuleSet(patterns ...string) *RuleSet {
	rs, err := NewRuleSet(patterns)
	if err != nil {
		panic(err)
	}
	return rs
}

// Rules returns the parsed rules in order.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	return rs.rules
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Included reports whether p, a slash-separated path relative to the bundle
// root, belongs in the bundle. A nil RuleSet includes everything.
func (rs *RuleSet) Included(p string, isDir bool) bool {
	if rs == nil {
		return true
	}
	p = path.Clean(strings.TrimPrefix(p, "./"))

	for _, rule := range rs.negated {
		if rule.Matches(p, isDir) {
			return true
		}
	}
	for _, rule := range rs.excludes {
		if rule.Matches(p, isDir) {
			return false
		}
	}
	return true
}

// Exclusion returns the first rule excluding p, if any.
func (rs *RuleSet) Exclusion(p string, isDir bool) (Rule, bool) {
	if rs == nil || rs.Included(p, isDir) {
		return Rule{}, false
	}
	p = path.Clean(strings.TrimPrefix(p, "./"))
	for _, rule := range rs.excludes {
		if rule.Matches(p, isDir) {
			return rule, true
		}
	}
	return Rule{}, false
}

// negatedBelow reports whether a negated rule names a path strictly below dir.
func (rs *RuleSet) negatedBelow(dir string) bool {
	if rs == nil {
		return false
	}
	for _, rule := range rs.negated {
		if strings.HasPrefix(rule.Pattern, dir+"/") {
			return true
		}
	}
	return false
}
