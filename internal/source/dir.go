package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docblocks/internal/frontmatter"
	"github.com/dgallion1/docblocks/internal/importer"
)

// Dir reads articles from a directory laid out as {root}/{lang}{pagePath}.{ext}.
// Any importer extension is accepted; Markdown wins when several exist.
// An optional {pagePath}.json sidecar holds the data record.
type Dir struct {
	Root string
}

// GetArticle implements ArticleSource.
func (d Dir) GetArticle(ctx context.Context, lang, pagePath string) (*Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := filepath.Join(d.Root, filepath.Clean("/"+lang+NormalizePath(pagePath)))

	for _, ext := range importer.SupportedExtensions {
		path := base + ext
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return d.load(path, raw, base)
	}
	return nil, fmt.Errorf("%s%s: %w", lang, pagePath, ErrNotFound)
}

func (d Dir) load(path string, raw []byte, base string) (*Article, error) {
	imp, err := importer.ForFile(path)
	if err != nil {
		return nil, err
	}
	md, err := imp.Import(bytes.NewReader(raw), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	front, body, err := frontmatter.Split(md)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", path, err)
	}

	a := &Article{Markdown: body, FrontMatter: front}
	sidecar, err := os.ReadFile(base + ".json")
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read data record: %w", err)
	default:
		if err := json.Unmarshal(sidecar, &a.DataRecord); err != nil {
			return nil, fmt.Errorf("decode data record %s: %w", base+".json", err)
		}
	}
	return a, nil
}

// List returns the page paths of every article for lang, sorted.
func (d Dir) List(lang string) ([]string, error) {
	root := filepath.Join(d.Root, filepath.Clean("/"+lang))
	seen := map[string]bool{}
	var out []string
	err := filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() || !importer.IsSupported(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		page := "/" + filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		if !seen[page] {
			seen[page] = true
			out = append(out, page)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	return out, nil
}
