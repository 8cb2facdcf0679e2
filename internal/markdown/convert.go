// Package markdown holds the content transforms shared by both sync
// directions: image inlining, HTML→Markdown conversion with callout
// preservation, and the content equivalence detector.
package markdown

import (
	"html"
	"regexp"
	"strings"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"jaytaylor.com/html2text"
)

// Classification order when a callout carries several type classes.
var calloutPriority = []string{"danger", "warning", "success", "tip", "info", "note"}

var (
	calloutLinePattern    = regexp.MustCompile(`^\s*>\s*\[![A-Za-z]+\]`)
	escapedCalloutPattern = regexp.MustCompile(`\\\[!([A-Za-z]+)\\?\]`)
	trailingSpacePattern  = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRunPattern       = regexp.MustCompile(`\n{3,}`)

	brTagPattern      = regexp.MustCompile(`(?i)<\s*br\s*/?\s*>`)
	pCloseTagPattern  = regexp.MustCompile(`(?i)</\s*p\s*>`)
	pOpenTagPattern   = regexp.MustCompile(`(?i)<\s*p[^>]*>`)
	anyTagPattern     = regexp.MustCompile(`<[^>]+>`)
	lineEndingPattern = regexp.MustCompile(`\r\n|\r`)
)

// Convert turns rendered page HTML into Markdown. Callout blocks survive as
// `> [!TYPE]` blockquotes. Conversion degrades through a chain — the
// html-to-markdown converter, then html2text, then plain tag stripping — and
// the last step cannot fail, so Convert always produces something.
func Convert(src string) string {
	src = preprocessCallouts(src)
	if out, err := convertPrimary(src); err == nil && strings.TrimSpace(out) != "" {
		return postprocess(out)
	}
	if out, err := convertSecondary(src); err == nil && strings.TrimSpace(out) != "" {
		return postprocess(out)
	}
	return stripTags(src)
}

// preprocessCallouts rewrites every element with a "callout" class into a
// blockquote whose first paragraph is the admonition marker, so any
// downstream converter renders it as a quoted block.
func preprocessCallouts(src string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return src
	}
	doc.Find("*[class]").Each(func(_ int, sel *goquery.Selection) {
		classes := strings.Fields(strings.ToLower(sel.AttrOr("class", "")))
		if !containsClass(classes, "callout") {
			return
		}
		inner, err := sel.Html()
		if err != nil {
			return
		}
		marker := "<blockquote><p>[!" + classifyCallout(classes) + "]</p>"
		sel.ReplaceWithHtml(marker + inner + "</blockquote>")
	})
	out, err := doc.Find("body").Html()
	if err != nil {
		return src
	}
	return out
}

func classifyCallout(classes []string) string {
	for _, kind := range calloutPriority {
		if containsClass(classes, kind) {
			return strings.ToUpper(kind)
		}
	}
	return "INFO"
}

func containsClass(classes []string, want string) bool {
	for _, c := range classes {
		if c == want {
			return true
		}
	}
	return false
}

func convertPrimary(src string) (string, error) {
	conv := htmltomd.NewConverter("", true, &htmltomd.Options{
		HeadingStyle:     "atx",
		CodeBlockStyle:   "fenced",
		BulletListMarker: "-",
	})
	return conv.ConvertString(src)
}

func convertSecondary(src string) (string, error) {
	return html2text.FromString(src, html2text.Options{})
}

func postprocess(md string) string {
	// The primary converter escapes the square brackets of the callout
	// markers it produced from our own preprocessing; restore them.
	md = escapedCalloutPattern.ReplaceAllString(md, "[!$1]")
	md = trailingSpacePattern.ReplaceAllString(md, "")
	md = blankRunPattern.ReplaceAllString(md, "\n\n")
	md = strings.TrimSpace(md)

	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if calloutLinePattern.MatchString(line) && len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n") + "\n"
}

// stripTags is the converter of last resort: drop markup, keep text.
func stripTags(src string) string {
	s := brTagPattern.ReplaceAllString(src, "\n")
	s = pCloseTagPattern.ReplaceAllString(s, "\n\n")
	s = pOpenTagPattern.ReplaceAllString(s, "")
	s = anyTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = lineEndingPattern.ReplaceAllString(s, "\n")
	s = blankRunPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s) + "\n"
}
