// Package frontmatter splits and parses YAML front-matter, keeping key order.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a front-matter block
// but never closed it.
var ErrMissingClosingDelimiter = errors.New("front-matter start delimiter found but closing delimiter is missing")

// Split separates `---` delimited front-matter from the Markdown body.
// Without a leading delimiter, front is empty and body is the whole input.
func Split(content string) (front, body string, err error) {
	nl := "\n"
	if i := strings.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = "\r\n"
	}
	open := "---" + nl
	if !strings.HasPrefix(content, open) {
		return "", content, nil
	}
	rest := content[len(open):]
	if strings.HasPrefix(rest, open) {
		return "", rest[len(open):], nil
	}
	closeSeq := nl + "---" + nl
	idx := strings.Index(rest, closeSeq)
	if idx < 0 {
		if strings.HasSuffix(rest, nl+"---") {
			return rest[:len(rest)-len("---")], "", nil
		}
		return "", "", ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closeSeq):], nil
}

// Field is one top-level key. Scalars have a single value; lists have List set.
type Field struct {
	Key    string
	Values []string
	List   bool
}

// Value returns the field joined with ", " for lists.
func (f Field) Value() string {
	return strings.Join(f.Values, ", ")
}

// Fields holds the scalar and list fields of a front-matter block in document order.
type Fields []Field

// Parse decodes front-matter YAML. Mapping values and lists containing
// non-scalars are skipped.
func Parse(front string) (Fields, error) {
	if strings.TrimSpace(front) == "" {
		return nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(front), &doc); err != nil {
		return nil, fmt.Errorf("parse front-matter: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse front-matter: top level is not a mapping")
	}

	var out Fields
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			if val.Tag == "!!null" {
				continue
			}
			out = append(out, Field{Key: key, Values: []string{val.Value}})
		case yaml.SequenceNode:
			values, ok := scalars(val)
			if !ok {
				continue
			}
			out = append(out, Field{Key: key, Values: values, List: true})
		}
	}
	return out, nil
}

func scalars(seq *yaml.Node) ([]string, bool) {
	values := make([]string, 0, len(seq.Content))
	for _, item := range seq.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, false
		}
		values = append(values, item.Value)
	}
	return values, true
}

// Get returns the field named key. An exact match wins over a case-insensitive one.
func (fs Fields) Get(key string) (Field, bool) {
	for _, f := range fs {
		if f.Key == key {
			return f, true
		}
	}
	for _, f := range fs {
		if strings.EqualFold(f.Key, key) {
			return f, true
		}
	}
	return Field{}, false
}

// String returns the first value of key, or "".
func (fs Fields) String(key string) string {
	f, ok := fs.Get(key)
	if !ok || len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

// Strings returns every value of key.
func (fs Fields) Strings(key string) []string {
	f, _ := fs.Get(key)
	return f.Values
}
