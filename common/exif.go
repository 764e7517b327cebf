package common

import (
	"fmt"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

const dateLayout = "2006-01-02"

// ModTimeDate returns the file's modification time as a UTC calendar date.
func ModTimeDate(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return FormatDate(info.ModTime()), nil
}

// ExifDate returns the capture date recorded in the file's EXIF block.
func ExifDate(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode exif: %w", err)
	}

	taken, err := x.DateTime()
	if err != nil {
		return "", fmt.Errorf("no capture date in exif: %w", err)
	}
	return taken.Format(dateLayout), nil
}

// TakenAt picks the date for a source photo. With source "exif" it tries the
// EXIF capture date first and falls back to the modification time.
func TakenAt(path, source string) (string, error) {
	if source == "exif" {
		if date, err := ExifDate(path); err == nil {
			return date, nil
		}
	}
	return ModTimeDate(path)
}

// FormatDate truncates t to its UTC calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
