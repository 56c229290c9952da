package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The site appends an opaque build hash to each structural class name
// (e.g. "SplitScreenContentHeaderArtist-ftloCc"), so regions are located
// by the stable prefix of a class token rather than an exact selector.

// hasClassPrefix reports whether any class token of the node starts with prefix.
func hasClassPrefix(s *goquery.Selection, prefix string) bool {
	for _, token := range strings.Fields(s.AttrOr("class", "")) {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return false
}

// findClassPrefix returns the first descendant of root with the given tag
// whose class list contains a token starting with prefix.
func findClassPrefix(root *goquery.Selection, tag, prefix string) *goquery.Selection {
	return root.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasClassPrefix(s, prefix)
	}).First()
}

// findAttrPrefix returns the first descendant of root with the given tag
// whose attribute value starts with prefix.
func findAttrPrefix(root *goquery.Selection, tag, attr, prefix string) *goquery.Selection {
	return root.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr(attr)
		return ok && strings.HasPrefix(v, prefix)
	}).First()
}
