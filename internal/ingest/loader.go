package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dslipak/pdf"

	"studyrag/internal/document"
)

var (
	ErrNotFound          = errors.New("path not found")
	ErrNotDirectory      = errors.New("not a directory")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

var supportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// Loader reads study documents from disk. PDF text extraction is delegated to
// the pdf package; everything else is read as UTF-8 text.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// LoadFile loads a single file, dispatching on its extension.
func (l *Loader) LoadFile(path string) (document.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return document.Document{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return document.Document{}, err
	}

	ext := strings.ToLower(filepath.Ext(path))

	var content string
	switch {
	case ext == ".pdf":
		content, err = loadPDF(path)
	case supportedExtensions[ext]:
		content, err = loadText(path)
	default:
		return document.Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return document.Document{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return document.Document{
		Content: content,
		Source:  filepath.Base(path),
		Metadata: map[string]any{
			"file_path": abs,
			"file_type": ext,
			"file_size": info.Size(),
		},
	}, nil
}

// LoadDirectory walks dir recursively and loads every supported file.
// Files that fail to load are skipped with a warning so one corrupt file does
// not abort the whole ingestion.
func (l *Loader) LoadDirectory(dir string) ([]document.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	var docs []document.Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		doc, err := l.LoadFile(path)
		if err != nil {
			slog.Warn("skipping file", "path", path, "error", err)
			return nil
		}
		slog.Info("loaded document", "source", doc.Source, "bytes", len(doc.Content))
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func loadPDF(path string) (string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var parts []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("skipping unreadable pdf page", "path", path, "page", i, "error", err)
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
