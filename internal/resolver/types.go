// Package resolver maps content descriptors to the most specific
// existing template across a prioritized chain of override roots.
package resolver

import "path"

// Common descriptor kinds. Kinds are free-form strings keyed into the
// rule table; these are the ones the default rules know about.
const (
	KindSingular = "singular"
	KindArchive  = "archive"
	KindIndex    = "index"
)

// Descriptor describes what is being rendered. It is built fresh per
// resolution request and never stored.
type Descriptor struct {
	// Kind selects the pattern list in the rule table.
	Kind string
	// Type is the content type, e.g. "post" or "page".
	Type string
	// TypeSlug is an optional slug scoped to the type, e.g. a
	// category name.
	TypeSlug string
	// PathSlug is an optional slash-separated hierarchical slug,
	// e.g. "docs/install/linux".
	PathSlug string
	// Depth is how many ancestors of PathSlug may be consulted when
	// expanding hierarchical patterns. Zero means the full slug only.
	Depth int
}

// Resolved is the outcome of a successful resolution: the root the
// template was found in and its name within that root.
type Resolved struct {
	Root string
	Name string
}

// Path joins root and name for display and for filesystem-backed
// roots.
func (r Resolved) Path() string {
	return path.Join(r.Root, r.Name)
}

func (r Resolved) String() string {
	return r.Path()
}
