// Package pathfilter decides which files under a directory enter a bundle.
//
// A RuleSet is built from ignore rules, evaluated in order:
//
//	path        exact path relative to the root, and everything below it
//	!path       force-include path (and everything below it)
//	name/       directory named name at any depth, and everything below it
//	dir/name/   the directory dir/name only
//	*.ext       files whose basename ends in .ext
//	name*       files whose basename starts with name
//	dir/*.ext   files below dir whose basename matches *.ext
//
// Any other pattern containing a wildcard is matched with doublestar:
// against each path segment when it has no slash, or against the path
// and its ancestors when it does.
//
// Negated rules win over everything else. Otherwise the first rule that
// matches excludes the path. Included only looks at the path itself, so
// the answer does not depend on traversal order; Walk relies on that to
// skip excluded directories unless a negated rule names something below
// them.
package pathfilter
