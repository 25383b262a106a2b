package ingestion

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagRe        = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
	spaceRunRe   = regexp.MustCompile(`[ \t\f\v]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// blockSelectors are elements whose boundaries become line breaks when a
// description is flattened to text.
const blockSelectors = "p, div, li, br, tr, h1, h2, h3, h4, h5, h6, ul, ol"

// CleanDescription turns a posting description, which job boards often export as
// HTML, into plain text. Markup is removed with block elements kept on their own
// lines, entities are decoded, and whitespace is tidied with CleanText.
func CleanDescription(raw string) string {
	if raw == "" {
		return ""
	}
	if !tagRe.MatchString(raw) {
		return CleanText(html.UnescapeString(raw))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return CleanText(html.UnescapeString(tagRe.ReplaceAllString(raw, " ")))
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.BeforeHtml("\n")
		s.AfterHtml("\n")
	})
	return CleanText(doc.Text())
}

// CleanText normalizes line endings, collapses runs of spaces within lines,
// trims every line and allows at most one blank line in a row.
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
	}
	result := strings.Join(lines, "\n")
	result = blankLinesRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}
