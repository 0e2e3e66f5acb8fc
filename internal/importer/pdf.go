package importer

import (
	"fmt"
	"io"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFImporter extracts PDF text page by page, one "Page N" section per page.
type PDFImporter struct{}

func (PDFImporter) Import(r io.Reader, filename string) (string, error) {
	// ledongthuc/pdf needs a file on disk.
	tmp, err := os.CreateTemp("", "docblocks-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := pdfPages(tmpPath)
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	blocks := []string{heading(1, titleOf(filename))}
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		blocks = append(blocks, heading(2, fmt.Sprintf("Page %d", i+1)))
		blocks = append(blocks, splitParagraphs(page)...)
	}
	if len(blocks) == 1 {
		return "", nil
	}
	return joinBlocks(blocks), nil
}

func pdfPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
