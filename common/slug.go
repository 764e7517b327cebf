package common

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSlug is used when a filename has no usable characters.
const DefaultSlug = "photo"

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9]+`)
	wordSeparators = regexp.MustCompile(`[-_]+`)
)

// Stem returns the base filename without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen.
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return DefaultSlug
	}
	return slug
}

// TitleCase turns a filename stem like "my_cool-photo" into "My Cool Photo".
// Only the first character of each space-separated word is upper-cased; the
// rest of the word is lower-cased, so "2024abc" and "photo(copy)" keep their
// inner letters small.
func TitleCase(s string) string {
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)

	words := strings.Fields(wordSeparators.ReplaceAllString(s, " "))
	for i, w := range words {
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}

// SlugCounter hands out unique slugs within one run. The first occurrence of
// a base slug is returned as is, the Nth gets "-N" appended.
type SlugCounter struct {
	seen map[string]int
}

func NewSlugCounter() *SlugCounter {
	return &SlugCounter{seen: make(map[string]int)}
}

func (c *SlugCounter) Next(base string) string {
	c.seen[base]++
	n := c.seen[base]
	if n > 1 {
		return base + "-" + strconv.Itoa(n)
	}
	return base
}

// ToWebPath rewrites a file path under a "public" directory to the path the
// site serves it from. Paths outside "public" are returned with forward slashes.
func ToWebPath(path string) string {
	normalized := strings.ReplaceAll(path, "\\", "/")

	if rest, ok := strings.CutPrefix(normalized, "public/"); ok {
		return "/" + rest
	}

	const marker = "/public/"
	if idx := strings.Index(normalized, marker); idx >= 0 {
		return normalized[idx+len("/public"):]
	}

	return normalized
}
