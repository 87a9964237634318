package driven

import "github.com/athena-labs/athena-cli/internal/core/domain"

// DocumentSource discovers PDFs under the data directory and extracts
// page text from them. It is the external collaborator feeding the
// ingestion pipeline.
type DocumentSource interface {
	// ListFiles walks the data directory recursively and returns
	// every PDF with its subject/module derived from the path.
	ListFiles(dataDir string) ([]domain.FileInfo, error)

	// ExtractPages extracts cleaned per-page text from one PDF.
	ExtractPages(path string) ([]domain.PageRecord, error)

	// Structure returns the subject -> module -> files organization
	// of the data directory.
	Structure(dataDir string) (map[string]map[string][]string, error)
}
