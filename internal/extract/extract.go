// Package extract locates review fields inside semi-structured article markup.
package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/waxwing/internal/review"
)

// ArticleMarker identifies a published review article in the raw body.
// Pages without it are stubs or removed items.
const ArticleMarker = `data-testid="ReviewPageArticle"`

// ArticleSelector scopes extraction to the review article region.
const ArticleSelector = `article[data-testid="ReviewPageArticle"]`

// Stable class-name prefixes for each field region.
const (
	artistPrefix    = "SplitScreenContentHeaderArtist-"
	albumPrefix     = "SplitScreenContentHeaderHed-"
	yearPrefix      = "SplitScreenContentHeaderReleaseYear-"
	ratingPrefix    = "Rating-"
	dekPrefix       = "SplitScreenContentHeaderDekDown-"
	bodyPrefix      = "body__inner-container"
	infoSlicePrefix = "SplitScreenContentHeaderInfoSlice-"
	bylinePrefix    = "BylineName"
	coverArtMedia   = "(max-width: 767px)"
)

// LayoutError signals that a region assumed always present on a published
// article is missing or unreadable. It indicates an incompatible markup
// change, so it aborts the whole run rather than a single record.
type LayoutError struct {
	Region string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("page layout changed: %s region missing or unreadable", e.Region)
}

// Extract pulls a review record out of the article region of a detail page.
//
// It returns (nil, nil) when the release-year region is absent, which marks
// an unpublished stub rather than a broken layout. Optional regions degrade
// to review.NotAvailable. Any other missing region yields a *LayoutError.
func Extract(article *goquery.Selection) (*review.Review, error) {
	artistSel := findClassPrefix(article, "div", artistPrefix)
	if artistSel.Length() == 0 {
		return nil, &LayoutError{Region: "artist header"}
	}

	albumSel := findClassPrefix(article, "h1", albumPrefix)
	if albumSel.Length() == 0 {
		return nil, &LayoutError{Region: "album header"}
	}

	// Absence of the release year is the one tolerated gap: it reliably
	// marks a stub page, so the whole record is skipped.
	yearSel := findClassPrefix(article, "time", yearPrefix)
	if yearSel.Length() == 0 {
		return nil, nil
	}
	year, err := strconv.Atoi(strings.TrimSpace(yearSel.Text()))
	if err != nil {
		return nil, &LayoutError{Region: "release year"}
	}

	ratingSel := findClassPrefix(article, "p", ratingPrefix)
	if ratingSel.Length() == 0 {
		return nil, &LayoutError{Region: "rating"}
	}
	rating, err := strconv.ParseFloat(strings.TrimSpace(ratingSel.Text()), 64)
	if err != nil {
		return nil, &LayoutError{Region: "rating"}
	}

	bodySel := findClassPrefix(article, "div", bodyPrefix)
	if bodySel.Length() == 0 {
		return nil, &LayoutError{Region: "review body"}
	}
	var body strings.Builder
	bodySel.Find("p").Each(func(_ int, p *goquery.Selection) {
		body.WriteString(p.Text())
	})

	infoSel := findClassPrefix(article, "div", infoSlicePrefix)
	if infoSel.Length() == 0 {
		return nil, &LayoutError{Region: "info slice"}
	}
	var items []string
	infoSel.Find("li").Each(func(_ int, li *goquery.Selection) {
		items = append(items, li.Text())
	})
	info := mergeInfoSlice(items)

	return &review.Review{
		Artist:       strings.TrimSpace(artistSel.Text()),
		Album:        strings.TrimSpace(albumSel.Text()),
		YearReleased: year,
		Rating:       rating,
		SmallText:    optionalText(findClassPrefix(article, "div", dekPrefix)),
		Review:       body.String(),
		Reviewer:     reviewerName(article),
		Genre:        info["genre"],
		Label:        info["label"],
		Reviewed:     info["reviewed"],
		AlbumArtURL:  coverArtURL(article),
	}, nil
}

// optionalText returns the trimmed text of an optional region, or the
// sentinel when the region is absent.
func optionalText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return review.NotAvailable
	}
	return strings.TrimSpace(s.Text())
}

// reviewerName locates the byline and strips its fixed "By " prefix.
func reviewerName(article *goquery.Selection) string {
	sel := findAttrPrefix(article, "span", "data-testid", bylinePrefix)
	if sel.Length() == 0 {
		return review.NotAvailable
	}
	name := strings.TrimSpace(sel.Text())
	if len(name) > 3 {
		return name[3:]
	}
	return name
}

// mergeInfoSlice folds "key: value" list items onto the default mapping.
// Keys are lower-cased and trimmed; unrecognized keys are dropped, and keys
// missing from the list keep their defaults.
func mergeInfoSlice(items []string) map[string]string {
	info := map[string]string{
		"genre":    review.NotAvailable,
		"label":    review.NotAvailable,
		"reviewed": review.NotAvailable,
	}
	for _, item := range items {
		key, value, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if _, known := info[key]; known {
			info[key] = strings.TrimSpace(value)
		}
	}
	return info
}

// coverArtURL picks the second-to-last srcset candidate of the small-screen
// source, matching the resolution the site serves as its canonical art.
func coverArtURL(article *goquery.Selection) string {
	sel := article.Find(fmt.Sprintf(`source[media="%s"]`, coverArtMedia)).First()
	if sel.Length() == 0 {
		return review.NotAvailable
	}
	candidates := strings.Split(sel.AttrOr("srcset", ""), ",")
	if len(candidates) < 2 {
		return review.NotAvailable
	}
	return strings.TrimSpace(candidates[len(candidates)-2])
}
