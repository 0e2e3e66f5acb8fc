// Package source looks up articles by language and page path.
package source

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned when no article exists at the requested path.
var ErrNotFound = errors.New("article not found")

// Article is the raw material of one conversion.
type Article struct {
	Markdown    string         `json:"markdown"`
	FrontMatter string         `json:"front_matter"`
	DataRecord  map[string]any `json:"data"`
}

// ArticleSource looks up an article. Implementations return ErrNotFound
// (possibly wrapped) for missing articles.
type ArticleSource interface {
	GetArticle(ctx context.Context, lang, pagePath string) (*Article, error)
}

// NormalizePath returns pagePath with a single leading slash and no trailing one.
func NormalizePath(pagePath string) string {
	return "/" + strings.Trim(pagePath, "/")
}

// Memory is an in-memory ArticleSource.
type Memory struct {
	mu       sync.RWMutex
	articles map[string]*Article
}

// NewMemory returns an empty Memory source.
func NewMemory() *Memory {
	return &Memory{articles: map[string]*Article{}}
}

func memoryKey(lang, pagePath string) string {
	return lang + NormalizePath(pagePath)
}

// Put stores an article.
func (m *Memory) Put(lang, pagePath string, a *Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[memoryKey(lang, pagePath)] = a
}

// GetArticle implements ArticleSource.
func (m *Memory) GetArticle(ctx context.Context, lang, pagePath string) (*Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.articles[memoryKey(lang, pagePath)]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}
