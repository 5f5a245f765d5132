package resolver

import "strings"

// Pattern tokens recognized in rule tables.
const (
	tokenType     = "{type}"
	tokenTypeSlug = "{type_slug}"
	tokenPathSlug = "{path_slug}"
)

// RuleTable maps a descriptor kind to its candidate patterns, most
// specific first. Patterns are template strings over descriptor
// fields; a pattern whose token references an empty field is skipped
// for that descriptor. The table is configuration, supplied at
// resolver construction.
type RuleTable map[string][]string

// DefaultRules returns the built-in rule table. Hosts with their own
// content domains supply their own table via configuration.
func DefaultRules() RuleTable {
	return RuleTable{
		KindSingular: {
			"{type}-{path_slug}.html",
			"{type}-{type_slug}.html",
			"{type}.html",
			"singular.html",
		},
		KindArchive: {
			"archive-{type}-{type_slug}.html",
			"archive-{type}.html",
			"archive.html",
		},
		KindIndex: {
			"home.html",
		},
	}
}

// Candidates expands the descriptor against the table into an ordered
// list of template names, most specific first. The list is recomputed
// per call and never cached.
func (t RuleTable) Candidates(d Descriptor) []string {
	patterns := t[d.Kind]

	var out []string
	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		for _, name := range expand(pattern, d) {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	return out
}

// expand substitutes descriptor fields into one pattern. A pattern
// containing {path_slug} yields one candidate per ancestor of the
// slug, deepest first, walking up at most d.Depth segments.
func expand(pattern string, d Descriptor) []string {
	if strings.Contains(pattern, tokenType) {
		if d.Type == "" {
			return nil
		}
		pattern = strings.ReplaceAll(pattern, tokenType, d.Type)
	}

	if strings.Contains(pattern, tokenTypeSlug) {
		if d.TypeSlug == "" {
			return nil
		}
		pattern = strings.ReplaceAll(pattern, tokenTypeSlug, d.TypeSlug)
	}

	if !strings.Contains(pattern, tokenPathSlug) {
		return []string{pattern}
	}
	if d.PathSlug == "" {
		return nil
	}

	segments := strings.Split(strings.Trim(d.PathSlug, "/"), "/")

	var out []string
	for up := 0; up <= d.Depth && up < len(segments); up++ {
		slug := strings.Join(segments[:len(segments)-up], "-")
		out = append(out, strings.ReplaceAll(pattern, tokenPathSlug, slug))
	}

	return out
}
