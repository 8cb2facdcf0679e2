// Package naming encodes and decodes the ordered file/directory names used
// by the content tree: an optional zero-padded numeric prefix followed by a
// human title, e.g. "03 Getting Started".
package naming

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Unordered sorts after every numbered entry.
const Unordered = math.MaxInt

// The prefix is exactly two digits followed by at least one separator.
// "010 Title" therefore does not match: the third digit is not a separator.
var (
	prefixPattern   = regexp.MustCompile(`^\s*(\d{2})[\s\-_]+`)
	invalidFSChars  = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	titleSeparators = strings.NewReplacer("_", " ", "-", " ")
)

// Name is a decoded file or directory name.
type Name struct {
	Order int // Unordered when the name carries no prefix
	Title string
}

func (n Name) Ordered() bool {
	return n.Order != Unordered
}

// Decode splits an order prefix and a display title out of a name. The name
// should already have its extension stripped.
func Decode(name string) Name {
	m := prefixPattern.FindStringSubmatch(name)
	if m == nil {
		return Name{Order: Unordered, Title: strings.TrimSpace(name)}
	}
	order, err := strconv.Atoi(m[1])
	if err != nil {
		return Name{Order: Unordered, Title: strings.TrimSpace(name)}
	}
	rest := name[len(m[0]):]
	title := strings.TrimSpace(titleSeparators.Replace(rest))
	if title == "" {
		title = strings.TrimSpace(name)
	}
	return Name{Order: order, Title: title}
}

// Encode builds a filesystem-safe name from an optional priority and a
// title. The prefix is zero-padded to at least two digits; wider values keep
// their full width.
func Encode(order *int, title string) string {
	safe := Sanitize(title)
	if order == nil {
		return safe
	}
	n := strconv.Itoa(*order)
	if len(n) < 2 {
		n = fmt.Sprintf("%02d", *order)
	}
	return n + " " + safe
}

// Sanitize makes a safe, human-readable file name: illegal filesystem
// characters become underscores, whitespace collapses, and trailing dots or
// spaces are trimmed (a Windows limitation). Empty results become "untitled".
func Sanitize(title string) string {
	s := invalidFSChars.ReplaceAllString(title, "_")
	s = strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
	s = strings.TrimRight(s, " .")
	if s == "" {
		return "untitled"
	}
	return s
}

// Less orders siblings: by order ascending, unordered last, ties broken by
// case-insensitive title.
func Less(a, b Name) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return strings.ToLower(a.Title) < strings.ToLower(b.Title)
}

// SortNames sorts a slice of decoded names in sibling order.
func SortNames(names []Name) {
	sort.Slice(names, func(i, j int) bool {
		return Less(names[i], names[j])
	})
}
