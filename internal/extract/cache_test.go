package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sableworks/findex/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExtractor_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "line one\nline two\n")

	e := NewExtractor()
	text, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "line one\nline two\n" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractor_MissingFile(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract(filepath.Join(t.TempDir(), "gone.txt"))
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestExtractor_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "binary.exe", "MZ")

	e := NewExtractor()
	_, err := e.Extract(path)
	if !errors.Is(err, models.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".txt", ".PDF", ".docx"} {
		if !Supported(ext) {
			t.Errorf("Supported(%q) = false", ext)
		}
	}
	for _, ext := range []string{".exe", "", ".odp"} {
		if Supported(ext) {
			t.Errorf("Supported(%q) = true", ext)
		}
	}
}

func TestCachedExtractor_ServesStaleAfterChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "first")

	c := NewCachedExtractor(NewExtractor(), 4, time.Minute)
	text, err := c.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != "first" {
		t.Errorf("text = %q", text)
	}

	writeFile(t, dir, "a.txt", "second")
	text, err = c.Extract(path)
	if err != nil {
		t.Fatalf("Extract cached: %v", err)
	}
	if text != "first" {
		t.Errorf("cache should serve the stored text until invalidated, got %q", text)
	}
}

func TestCachedExtractor_Invalidate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "first")

	c := NewCachedExtractor(NewExtractor(), 4, time.Minute)
	if _, err := c.Extract(path); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	writeFile(t, dir, "a.txt", "second")
	c.Invalidate(path)

	text, err := c.Extract(path)
	if err != nil {
		t.Fatalf("Extract after invalidate: %v", err)
	}
	if text != "second" {
		t.Errorf("text = %q, want fresh extraction", text)
	}
	if c.Len() != 1 {
		t.Errorf("cache len = %d", c.Len())
	}
}

func TestCachedExtractor_ErrorsNotCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "late.txt")

	c := NewCachedExtractor(NewExtractor(), 4, time.Minute)
	if _, err := c.Extract(path); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}

	writeFile(t, dir, "late.txt", "now present")
	text, err := c.Extract(path)
	if err != nil {
		t.Fatalf("Extract after create: %v", err)
	}
	if text != "now present" {
		t.Errorf("text = %q", text)
	}
}
