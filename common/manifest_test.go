package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func samplePhotos() Manifest {
	return Manifest{
		{
			ID:       "beach",
			Src:      "/photography/images/beach.jpg",
			Alt:      "Beach photograph.",
			Width:    2600,
			Height:   1733,
			Title:    "Beach",
			TakenAt:  "2024-06-01",
			Location: PlaceholderLocation,
		},
		{
			ID:       "beach-2",
			Src:      "/photography/images/beach-2.jpg",
			Alt:      "Beach photograph.",
			Width:    1733,
			Height:   2600,
			Title:    "Beach",
			TakenAt:  "2024-06-02",
			Location: PlaceholderLocation,
			Note:     "Shot on film & scanned",
		},
	}
}

func TestWriteManifestJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photography.json")

	if err := WriteManifest(path, samplePhotos()); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read manifest: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "[\n  {\n    \"id\": \"beach\",") {
		t.Errorf("Unexpected JSON layout:\n%s", content)
	}
	if !strings.Contains(content, `"takenAt": "2024-06-01"`) {
		t.Error("Expected camelCase takenAt key")
	}
	if !strings.Contains(content, "film & scanned") {
		t.Error("Expected ampersand to stay unescaped")
	}
	if strings.Count(content, `"note"`) != 1 {
		t.Error("Expected note only on the entry that has one")
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if len(got) != 2 || got[1].Note != "Shot on film & scanned" {
		t.Errorf("Unexpected manifest read back: %+v", got)
	}
}

func TestWriteManifestYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photography.yaml")

	if err := WriteManifest(path, samplePhotos()); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "takenAt: \"2024-06-01\"") && !strings.Contains(string(data), "takenAt: 2024-06-01") {
		t.Errorf("Expected takenAt in YAML output:\n%s", data)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	ids := got.IDs()
	if len(ids) != 2 || ids[0] != "beach" || ids[1] != "beach-2" {
		t.Errorf("Unexpected ids %v", ids)
	}
}

func TestWriteManifestEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := WriteManifest(path, nil); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Expected empty JSON array, got %q", data)
	}
}

func TestTakenAtFallsBackToModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jpg")
	touch(t, path)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	want := FormatDate(info.ModTime())

	for _, source := range []string{"mtime", "exif"} {
		got, err := TakenAt(path, source)
		if err != nil {
			t.Fatalf("TakenAt(%s) failed: %v", source, err)
		}
		if got != want {
			t.Errorf("TakenAt(%s) = %s, want %s", source, got, want)
		}
	}
}
