// Package labels resolves localized UI labels by category and code.
package labels

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no label exists for the requested key.
var ErrNotFound = errors.New("label not found")

// Lookup resolves a label. Implementations must be safe for concurrent use.
type Lookup interface {
	LookupLabel(ctx context.Context, category, code, lang string) (string, error)
}

// Static serves labels from memory, keyed lang -> category -> code.
// A missing language falls back to DefaultLang.
type Static struct {
	mu          sync.RWMutex
	DefaultLang string
	labels      map[string]map[string]map[string]string
}

// NewStatic returns an empty label table with "en" as the fallback language.
func NewStatic() *Static {
	return &Static{DefaultLang: "en", labels: map[string]map[string]map[string]string{}}
}

// Set stores one label.
func (s *Static) Set(lang, category, code, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byCat, ok := s.labels[lang]
	if !ok {
		byCat = map[string]map[string]string{}
		s.labels[lang] = byCat
	}
	byCode, ok := byCat[category]
	if !ok {
		byCode = map[string]string{}
		byCat[category] = byCode
	}
	byCode[code] = label
}

// LookupLabel implements Lookup.
func (s *Static) LookupLabel(ctx context.Context, category, code, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.labels[lang][category][code]; ok {
		return l, nil
	}
	if l, ok := s.labels[s.DefaultLang][category][code]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%s/%s/%s: %w", lang, category, code, ErrNotFound)
}

// LoadFile reads a YAML label table of the form
//
//	en:
//	  ui:
//	    video-transcript: Transcript
//	  role:
//	    admin: Administrator
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML label table.
func Parse(data []byte) (*Static, error) {
	var raw map[string]map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	s := NewStatic()
	for lang, byCat := range raw {
		for category, byCode := range byCat {
			for code, label := range byCode {
				s.Set(lang, category, code, label)
			}
		}
	}
	return s, nil
}
