package pathfilter

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
)

// RuleKind is the shape of an ignore rule.
type RuleKind int

const (
	RuleExact RuleKind = iota
	RuleNegated
	RuleDirectory
	RuleSuffix
	RulePrefix
	RuleHybrid
	RuleGlob
)

func (k RuleKind) String() string {
	switch k {
	case RuleExact:
		return "exact"
	case RuleNegated:
		return "negated"
	case RuleDirectory:
		return "directory"
	case RuleSuffix:
		return "suffix"
	case RulePrefix:
		return "prefix"
	case RuleHybrid:
		return "hybrid"
	case RuleGlob:
		return "glob"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Rule is a parsed ignore rule.
type Rule struct {
	Raw  string
	Kind RuleKind
	// Pattern is the path, name, suffix, prefix or glob the rule tests.
	Pattern string
	// Dir is the directory part of a hybrid rule.
	Dir string
	// Anchored directory rules match one path instead of a name at any depth.
	Anchored bool
}

const wildcards = "*?[{"

func hasWildcard(s string) bool {
	return strings.ContainsAny(s, wildcards)
}

func cleanRulePath(p string) string {
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// ParseRule classifies a single rule.
func ParseRule(raw string) (Rule, error) {
	trimmed := strings.TrimSpace(raw)
	invalid := func(reason string) (Rule, error) {
		return Rule{}, fmt.Errorf("%w: %q: %s", kerrors.ErrInvalidRule, raw, reason)
	}

	if trimmed == "" {
		return invalid("empty rule")
	}

	if strings.HasPrefix(trimmed, "!") {
		target := cleanRulePath(strings.TrimSuffix(trimmed[1:], "/"))
		if target == "" || target == "." {
			return invalid("negation needs a path")
		}
		if hasWildcard(target) {
			return invalid("negated rules must name an exact path")
		}
		return Rule{Raw: raw, Kind: RuleNegated, Pattern: target}, nil
	}

	if strings.HasSuffix(trimmed, "/") {
		anchored := strings.HasPrefix(trimmed, "/")
		name := cleanRulePath(strings.TrimSuffix(trimmed, "/"))
		if name == "" || name == "." {
			return invalid("directory rule needs a name")
		}
		if strings.Contains(name, "/") {
			anchored = true
		}
		if hasWildcard(name) {
			return globRule(raw, name)
		}
		return Rule{Raw: raw, Kind: RuleDirectory, Pattern: name, Anchored: anchored}, nil
	}

	if !strings.Contains(trimmed, "/") {
		if strings.HasPrefix(trimmed, "*.") && !hasWildcard(trimmed[1:]) {
			return Rule{Raw: raw, Kind: RuleSuffix, Pattern: trimmed[1:]}, nil
		}
		if len(trimmed) > 1 && strings.HasSuffix(trimmed, "*") && !hasWildcard(trimmed[:len(trimmed)-1]) {
			return Rule{Raw: raw, Kind: RulePrefix, Pattern: trimmed[:len(trimmed)-1]}, nil
		}
	}

	cleaned := cleanRulePath(trimmed)
	if cleaned == "" || cleaned == "." {
		return invalid("rule matches the bundle root")
	}

	if !hasWildcard(cleaned) {
		return Rule{Raw: raw, Kind: RuleExact, Pattern: cleaned}, nil
	}

	if i := strings.LastIndex(cleaned, "/"); i > 0 {
		dir, base := cleaned[:i], cleaned[i+1:]
		if !hasWildcard(dir) && hasWildcard(base) {
			if !doublestar.ValidatePattern(base) {
				return invalid("malformed glob")
			}
			return Rule{Raw: raw, Kind: RuleHybrid, Pattern: base, Dir: dir}, nil
		}
	}

	return globRule(raw, cleaned)
}

func globRule(raw, pattern string) (Rule, error) {
	if !doublestar.ValidatePattern(pattern) {
		return Rule{}, fmt.Errorf("%w: %q: malformed glob", kerrors.ErrInvalidRule, raw)
	}
	return Rule{Raw: raw, Kind: RuleGlob, Pattern: pattern}, nil
}

// within reports whether p is base or lies below it.
func within(p, base string) bool {
	return p == base || strings.HasPrefix(p, base+"/")
}

// Matches reports whether the rule applies to p. Negated rules match the
// paths they force-include.
func (r Rule) Matches(p string, isDir bool) bool {
	segments := strings.Split(p, "/")
	base := segments[len(segments)-1]

	switch r.Kind {
	case RuleExact, RuleNegated:
		return within(p, r.Pattern)

	case RuleDirectory:
		if r.Anchored {
			return within(p, r.Pattern)
		}
		dirs := segments
		if !isDir {
			dirs = segments[:len(segments)-1]
		}
		for _, segment := range dirs {
			if segment == r.Pattern {
				return true
			}
		}
		return false

	case RuleSuffix:
		return !isDir && strings.HasSuffix(base, r.Pattern)

	case RulePrefix:
		return !isDir && strings.HasPrefix(base, r.Pattern)

	case RuleHybrid:
		if isDir || !strings.HasPrefix(p, r.Dir+"/") {
			return false
		}
		matched, _ := doublestar.Match(r.Pattern, base)
		return matched

	case RuleGlob:
		if !strings.Contains(r.Pattern, "/") {
			for _, segment := range segments {
				if matched, _ := doublestar.Match(r.Pattern, segment); matched {
					return true
				}
			}
			return false
		}
		for i := len(segments); i > 0; i-- {
			if matched, _ := doublestar.Match(r.Pattern, strings.Join(segments[:i], "/")); matched {
				return true
			}
		}
		return false
	}

	return false
}
