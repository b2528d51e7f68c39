// Package ingest loads raw screenplay text for normalization. It reads
// plain-text exports directly and extracts text from PDF files, and it
// discovers script sources on disk.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tsawler/tabula"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Source identifies one raw script file on disk.
type Source struct {
	// ScriptID is the identifier derived from the file name, used to tag
	// every block parsed from this source.
	ScriptID string `json:"script_id"`

	// Path is the location of the raw file.
	Path string `json:"path"`
}

// ReadText reads a text file, decoding it as UTF-8 with substitution:
// invalid byte sequences become the Unicode replacement character rather
// than failing the read.
func ReadText(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	decoded, err := io.ReadAll(transform.NewReader(file, unicode.UTF8.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(decoded), nil
}

// ExtractPDF extracts the text content of a PDF file. Non-fatal extraction
// issues are returned as warning strings alongside the text.
func ExtractPDF(path string) (string, []string, error) {
	text, warnings, err := tabula.Open(path).Text()
	if err != nil {
		return "", nil, fmt.Errorf("failed to extract text from %s: %w", path, err)
	}

	messages := make([]string, 0, len(warnings))
	for _, w := range warnings {
		messages = append(messages, w.Message)
	}
	return text, messages, nil
}

// Load reads a raw script source, dispatching on the file extension:
// ".pdf" goes through PDF text extraction, everything else is read as
// text.
func Load(path string) (string, []string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return ExtractPDF(path)
	}
	text, err := ReadText(path)
	return text, nil, err
}

// Discover lists raw script files in dir matching the glob pattern, in
// sorted order. If only is non-empty, files whose names do not contain it
// (case-insensitively) are skipped.
func Discover(dir, pattern, only string) ([]Source, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", filepath.Join(dir, pattern), err)
	}
	sort.Strings(matches)

	var sources []Source
	for _, path := range matches {
		name := filepath.Base(path)
		if only != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(only)) {
			continue
		}
		sources = append(sources, Source{ScriptID: ScriptID(path), Path: path})
	}
	return sources, nil
}

// ScriptID derives a script identifier from a file path: the base name
// without its extension, with a trailing "_clean" or "_raw" marker
// stripped.
func ScriptID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.TrimSuffix(stem, "_clean")
	stem = strings.TrimSuffix(stem, "_raw")
	return stem
}
