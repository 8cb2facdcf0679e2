package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
)

// Baseline CommonMark renderer, no extensions: the point is a stable
// comparison target, not fidelity to BookStack's own parser.
var baseline = goldmark.New()

// Equivalent reports whether candidate markdown matches the remote page
// content. Markdown-to-markdown comparison is preferred; when the remote
// only exposes rendered HTML, the candidate is rendered and compared
// instead. The detector is conservative: any doubt (render failure, neither
// field present) reports false, so a redundant write beats stale content.
func Equivalent(candidate string, remoteMarkdown, remoteHTML *string) bool {
	if remoteMarkdown != nil {
		return strings.TrimSpace(candidate) == strings.TrimSpace(*remoteMarkdown)
	}
	if remoteHTML != nil {
		var buf bytes.Buffer
		if err := baseline.Convert([]byte(candidate), &buf); err != nil {
			return false
		}
		return strings.TrimSpace(buf.String()) == strings.TrimSpace(*remoteHTML)
	}
	return false
}
