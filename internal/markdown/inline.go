package markdown

import (
	"encoding/base64"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Matches ![alt](ref) with an optional trailing quoted title.
var imageRefPattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)

// Recognized image extensions with MIME fallbacks for platforms whose mime
// database lacks an entry.
var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// InlineImages rewrites local image references into base64 data URIs so the
// pushed markdown is self-contained. References that do not resolve to a
// recognized image file are left untouched. The only side effect is reading
// the image files themselves.
func InlineImages(md, pageDir, contentRoot string) string {
	return imageRefPattern.ReplaceAllStringFunc(md, func(match string) string {
		groups := imageRefPattern.FindStringSubmatch(match)
		alt := groups[1]
		ref := strings.ReplaceAll(groups[2], "%20", " ")
		path := resolveImage(ref, pageDir, contentRoot)
		if path == "" {
			return match
		}
		uri := toDataURI(path)
		if uri == "" {
			return match
		}
		return "![" + alt + "](" + uri + ")"
	})
}

// resolveImage tries the page's own directory first, then the content root.
func resolveImage(ref, pageDir, contentRoot string) string {
	for _, base := range []string{pageDir, contentRoot} {
		if base == "" {
			continue
		}
		candidate := filepath.Join(base, filepath.FromSlash(ref))
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}

func toDataURI(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	fallback, recognized := imageMIMETypes[ext]
	if !recognized {
		return ""
	}
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		mimeType = fallback
	}
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
