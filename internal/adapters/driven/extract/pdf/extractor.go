// Package pdf discovers PDF files under the data directory and extracts
// cleaned per-page text from them.
package pdf

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/athena-labs/athena-cli/internal/core/domain"
	"github.com/athena-labs/athena-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.DocumentSource = (*Extractor)(nil)

// Fallbacks when a file sits outside the subject/module hierarchy.
const (
	DefaultSubject = "Unknown"
	DefaultModule  = "General"
)

var (
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	// Keeps word characters plus the punctuation and operators common
	// in technical manuals. Everything else becomes a space.
	specialCharPattern = regexp.MustCompile(`[^\w\s.,\-+*/()\[\]{}:;"'=<>%$#@!&|?]`)
	// Machining codes like G01 must survive as standalone tokens.
	gcodePattern = regexp.MustCompile(`\b(G\d+)\b`)
)

// Extractor reads PDFs from disk.
type Extractor struct{}

// NewExtractor creates a PDF extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ListFiles walks dataDir recursively and returns every PDF with its
// subject and module derived from the first two directory segments.
// A missing data directory is created and yields an empty list.
func (e *Extractor) ListFiles(dataDir string) ([]domain.FileInfo, error) {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dataDir, err)
		}
		return nil, nil
	}

	var files []domain.FileInfo
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			return nil
		}

		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			return err
		}

		subject, module := classify(rel)
		files = append(files, domain.FileInfo{
			FullPath:     path,
			FileName:     d.Name(),
			Subject:      subject,
			Module:       module,
			RelativePath: rel,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk data directory %s: %w", dataDir, err)
	}
	return files, nil
}

// classify derives (subject, module) from a path relative to the data
// directory. Files outside the two-level hierarchy get the fallbacks.
func classify(relativePath string) (string, string) {
	parts := strings.Split(filepath.ToSlash(relativePath), "/")
	switch {
	case len(parts) >= 3:
		return parts[0], parts[1]
	case len(parts) == 2:
		return parts[0], DefaultModule
	default:
		return DefaultSubject, DefaultModule
	}
}

// ExtractPages extracts cleaned per-page text from one PDF. Pages whose
// text is empty after cleaning are skipped; page numbers still reflect
// the document position.
func (e *Extractor) ExtractPages(path string) ([]domain.PageRecord, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	fileName := filepath.Base(path)

	var pages []domain.PageRecord
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		raw, err := page.GetPlainText(nil)
		if err != nil {
			// A single malformed page should not sink the document.
			continue
		}

		text := CleanText(raw)
		if text == "" {
			continue
		}

		pages = append(pages, domain.PageRecord{
			Text:       text,
			PageNumber: pageNum,
			FileName:   fileName,
			FilePath:   path,
			TotalPages: totalPages,
		})
	}
	return pages, nil
}

// CleanText normalizes extracted page text for indexing: URLs removed,
// whitespace collapsed, unusual characters spaced out, machining codes
// isolated as standalone tokens.
func CleanText(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = specialCharPattern.ReplaceAllString(text, " ")
	text = gcodePattern.ReplaceAllString(text, " $1 ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Structure returns the subject -> module -> file names organization of
// the data directory.
func (e *Extractor) Structure(dataDir string) (map[string]map[string][]string, error) {
	files, err := e.ListFiles(dataDir)
	if err != nil {
		return nil, err
	}

	structure := make(map[string]map[string][]string)
	for _, file := range files {
		modules, ok := structure[file.Subject]
		if !ok {
			modules = make(map[string][]string)
			structure[file.Subject] = modules
		}
		modules[file.Module] = append(modules[file.Module], file.FileName)
	}
	return structure, nil
}
