package common

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrNoImages is returned when a directory holds no file with a wanted extension.
var ErrNoImages = errors.New("no supported image files found")

// SourceExtensions are the formats the preparer accepts as input.
var SourceExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".heif": true,
	".webp": true,
}

// OutputExtensions are the formats that may appear in the processed directory.
var OutputExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// HasExtension reports whether name's lower-cased extension is in exts.
func HasExtension(name string, exts map[string]bool) bool {
	return exts[strings.ToLower(filepath.Ext(name))]
}

// ListImages returns the regular files in dir whose extension is in exts,
// joined with dir and in natural filename order. It does not recurse.
func ListImages(dir string, exts map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !HasExtension(entry.Name(), exts) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	SortNatural(files)
	return files, nil
}

// SortNatural sorts paths by base name the way a person would: digit runs
// compare as numbers and case and accents are ignored.
func SortNatural(paths []string) {
	col := collate.New(language.English, collate.Numeric, collate.IgnoreCase, collate.IgnoreDiacritics)
	slices.SortStableFunc(paths, func(a, b string) int {
		return col.CompareString(filepath.Base(a), filepath.Base(b))
	})
}

// Shuffle permutes items in place with a Fisher-Yates shuffle driven by rng.
func Shuffle[T any](items []T, rng *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
