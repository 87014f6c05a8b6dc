package services

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// DescriptionText returns the readable text of a job description. Scraped
// descriptions are sometimes stored as HTML fragments; markup is dropped and
// whitespace collapsed. Plain text passes through unchanged apart from
// whitespace.
func DescriptionText(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return normaliseText(raw)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return normaliseText(raw)
	}
	doc.Find("script, style").Remove()
	// keep words from adjacent block elements apart
	doc.Find("br, p, div, li").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return normaliseText(doc.Text())
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
