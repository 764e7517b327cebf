package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlaceholderLocation is written for every new photo and meant to be edited by hand.
const PlaceholderLocation = "Replace location"

// Photo is one entry in the gallery manifest
type Photo struct {
	ID     string `json:"id" yaml:"id"`
	Src    string `json:"src" yaml:"src"`
	Alt    string `json:"alt" yaml:"alt"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Title  string `json:"title" yaml:"title"`

	// YYYY-MM-DD
	TakenAt string `json:"takenAt" yaml:"takenAt"`

	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Note     string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Manifest is the ordered list of photos. Order is display order.
type Manifest []Photo

// IDs returns the photo ids in manifest order.
func (m Manifest) IDs() []string {
	ids := make([]string, len(m))
	for i, p := range m {
		ids[i] = p.ID
	}
	return ids
}

func manifestFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Marshal encodes the manifest as JSON or YAML depending on path's extension.
func (m Manifest) Marshal(path string) ([]byte, error) {
	if m == nil {
		m = Manifest{}
	}

	if manifestFormat(path) == "yaml" {
		data, err := yaml.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal manifest: %w", err)
		}
		return data, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteManifest overwrites path with the encoded manifest.
func WriteManifest(path string, m Manifest) error {
	data, err := m.Marshal(path)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest parses a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if manifestFormat(path) == "yaml" {
		err = yaml.Unmarshal(data, &m)
	} else {
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}
