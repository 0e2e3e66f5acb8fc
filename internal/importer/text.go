package importer

import (
	"bufio"
	"io"
	"strings"
)

// TextImporter treats blank-line separated runs as paragraphs under a title heading.
type TextImporter struct{}

func (TextImporter) Import(r io.Reader, filename string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if len(paragraphs) == 0 {
		return "", nil
	}
	return joinBlocks(append([]string{heading(1, titleOf(filename))}, paragraphs...)), nil
}
