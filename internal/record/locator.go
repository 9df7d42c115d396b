package record

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Extension is the suffix of every issue file.
const Extension = ".md"

var (
	specialChars  = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	whitespace    = regexp.MustCompile(`\s+`)
	repeatedUnder = regexp.MustCompile(`_{2,}`)
)

// Slug derives the filename fragment for a title. Special characters
// become underscores, whitespace becomes hyphens, and runs of
// underscores collapse. A title with no usable characters yields
// "untitled" so the filename stays parseable.
func Slug(title string) string {
	slug := specialChars.ReplaceAllString(title, "_")
	slug = whitespace.ReplaceAllString(slug, "-")
	slug = repeatedUnder.ReplaceAllString(slug, "_")
	slug = strings.Trim(slug, "-_")
	if slug == "" {
		return "untitled"
	}
	return slug
}

// Filename composes the canonical issue filename for a number and an
// already-derived slug.
func Filename(number int, slug string) string {
	return fmt.Sprintf("%d.%s%s", number, slug, Extension)
}

// ParseFilename splits an issue filename into number and slug. It
// reports ok=false for files that are not issue records, such as
// README.md or stray files in the issues directory.
func ParseFilename(name string) (number int, slug string, ok bool) {
	if !strings.HasSuffix(name, Extension) {
		return 0, "", false
	}
	trimmed := strings.TrimSuffix(name, Extension)

	head, rest, found := strings.Cut(trimmed, ".")
	if !found {
		return 0, "", false
	}
	number, err := strconv.Atoi(head)
	if err != nil || number < 0 {
		return 0, "", false
	}
	return number, rest, true
}
