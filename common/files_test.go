package common

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"photo10.jpg", "Photo2.JPEG", "photo1.heic", "beach.png", "notes.txt", ".DS_Store"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.jpg"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	files, err := ListImages(dir, SourceExtensions)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	want := []string{"beach.png", "photo1.heic", "Photo2.JPEG", "photo10.jpg"}
	if !slices.Equal(names, want) {
		t.Errorf("ListImages = %v, want %v", names, want)
	}

	out, err := ListImages(dir, OutputExtensions)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("Expected heic to be excluded from output set, got %v", out)
	}
}

func TestListImagesMissingDir(t *testing.T) {
	if _, err := ListImages(filepath.Join(t.TempDir(), "nope"), SourceExtensions); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestSortNatural(t *testing.T) {
	paths := []string{"b/img12.jpg", "a/IMG3.jpg", "c/img1.jpg", "d/Apple.jpg"}
	SortNatural(paths)

	want := []string{"d/Apple.jpg", "c/img1.jpg", "a/IMG3.jpg", "b/img12.jpg"}
	if !slices.Equal(paths, want) {
		t.Errorf("SortNatural = %v, want %v", paths, want)
	}
}

func TestShuffleSeeded(t *testing.T) {
	base := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	first := slices.Clone(base)
	Shuffle(first, rand.New(rand.NewPCG(7, 7)))
	second := slices.Clone(base)
	Shuffle(second, rand.New(rand.NewPCG(7, 7)))

	if !slices.Equal(first, second) {
		t.Errorf("Same seed produced %v and %v", first, second)
	}

	sorted := slices.Clone(first)
	slices.Sort(sorted)
	if !slices.Equal(sorted, base) {
		t.Errorf("Shuffle lost or duplicated elements: %v", first)
	}
}

func TestShuffleVaries(t *testing.T) {
	base := []int{1, 2, 3, 4, 5, 6}
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 20; i++ {
		items := slices.Clone(base)
		Shuffle(items, rng)
		if !slices.Equal(items, base) {
			return
		}
	}
	t.Error("20 shuffles all kept the original order")
}
