// Package importer turns legacy source documents into article Markdown.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Importer converts raw document bytes into Markdown.
type Importer interface {
	Import(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists the file extensions an article may be stored as.
var SupportedExtensions = []string{".md", ".markdown", ".txt", ".csv", ".html", ".htm", ".pdf", ".docx"}

// ForFile returns the importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return MarkdownImporter{}, nil
	case ".txt":
		return TextImporter{}, nil
	case ".csv":
		return CSVImporter{}, nil
	case ".html", ".htm":
		return HTMLImporter{}, nil
	case ".pdf":
		return PDFImporter{}, nil
	case ".docx":
		return DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupported reports whether filename has a supported extension.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedExtensions {
		if s == ext {
			return true
		}
	}
	return false
}

// MarkdownImporter passes Markdown through.
type MarkdownImporter struct{}

func (MarkdownImporter) Import(r io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// titleOf derives a document title from a filename.
func titleOf(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// heading renders an ATX heading.
func heading(level int, text string) string {
	return strings.Repeat("#", level) + " " + text
}

// joinBlocks joins Markdown blocks with blank lines, dropping empty ones.
func joinBlocks(blocks []string) string {
	var kept []string
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n\n") + "\n"
}
