package resolver

import "strings"

// DescriptorFromPath maps a URL path to a content descriptor. The root
// path maps to the index kind; everything else is a singular page
// whose hierarchy follows the URL segments, so "/docs/install" becomes
// a page with path slug "docs/install", type slug "install", and one
// level of ancestry to walk.
func DescriptorFromPath(urlPath string) Descriptor {
	trimmed := strings.Trim(urlPath, "/")
	if trimmed == "" {
		return Descriptor{Kind: KindIndex}
	}

	segments := strings.Split(trimmed, "/")

	return Descriptor{
		Kind:     KindSingular,
		Type:     "page",
		TypeSlug: segments[len(segments)-1],
		PathSlug: trimmed,
		Depth:    len(segments) - 1,
	}
}
