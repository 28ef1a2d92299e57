package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// textAt returns the trimmed text of the first match of selector under scope.
// A missing scope, a missing match and blank text all yield nil.
func textAt(scope *goquery.Selection, selector string) *string {
	target := firstMatch(scope, selector)
	if target == nil {
		return nil
	}
	return nonBlank(target.Text())
}

// markupAt is textAt for inner markup.
func markupAt(scope *goquery.Selection, selector string) *string {
	target := firstMatch(scope, selector)
	if target == nil {
		return nil
	}
	inner, err := target.Html()
	if err != nil {
		return nil
	}
	return nonBlank(inner)
}

func firstMatch(scope *goquery.Selection, selector string) *goquery.Selection {
	if scope == nil || scope.Length() == 0 {
		return nil
	}
	target := scope.Find(selector).First()
	if target.Length() == 0 {
		return nil
	}
	return target
}

func nonBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
