// Package metadata writes front-matter and data record fields into the page head.
package metadata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/docblocks/internal/doctree"
	"github.com/dgallion1/docblocks/internal/frontmatter"
)

// Options brand the page title.
type Options struct {
	BrandPrefix string
	Brand       string
	// Article enables the branded title.
	Article bool
}

// Entry is one meta tag.
type Entry struct {
	Name    string
	Content string
}

// Collect merges front-matter fields (in document order) and data record
// fields (sorted by key). Only scalars and lists of scalars are kept. Keys
// that differ only in case merge under the lowercase key, and their
// comma-separated values are de-duplicated case-insensitively. A data record
// key spelled exactly like a front-matter key is ignored; front-matter wins.
func Collect(front frontmatter.Fields, data map[string]any) []Entry {
	type group struct {
		names  []string
		values []string
	}
	var order []string
	groups := map[string]*group{}
	add := func(name string, values []string) {
		if len(values) == 0 {
			return
		}
		key := strings.ToLower(name)
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		if !contains(g.names, name) {
			g.names = append(g.names, name)
		}
		g.values = append(g.values, strings.Join(values, ", "))
	}

	fromFront := map[string]bool{}
	for _, f := range front {
		add(f.Key, f.Values)
		fromFront[f.Key] = true
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if fromFront[k] {
			continue
		}
		if values, ok := scalarValues(data[k]); ok {
			add(k, values)
		}
	}

	entries := make([]Entry, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if len(g.names) == 1 && len(g.values) == 1 {
			entries = append(entries, Entry{Name: g.names[0], Content: g.values[0]})
			continue
		}
		entries = append(entries, Entry{Name: key, Content: dedupe(g.values)})
	}
	return entries
}

// dedupe splits values on commas and keeps the first spelling of each item.
func dedupe(values []string) string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			item = strings.TrimSpace(item)
			if item == "" || seen[strings.ToLower(item)] {
				continue
			}
			seen[strings.ToLower(item)] = true
			out = append(out, item)
		}
	}
	return strings.Join(out, ", ")
}

func scalarValues(v any) ([]string, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := scalar(item)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case []string:
		return x, true
	}
	s, ok := scalar(v)
	if !ok {
		return nil, false
	}
	return []string{s}, true
}

func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

// Title builds the page title. Article pages get "{title} | {prefix} {solution}",
// or "{title} | {solution}" when the solution already names the prefix.
// The solution is the first front-matter solution, else the brand.
func Title(title string, front frontmatter.Fields, opts Options) string {
	if !opts.Article || title == "" {
		return title
	}
	solution := opts.Brand
	if s := front.Strings("solution"); len(s) > 0 && strings.TrimSpace(s[0]) != "" {
		solution = strings.TrimSpace(s[0])
	}
	if solution == "" {
		return title
	}
	prefix := strings.TrimSpace(opts.BrandPrefix)
	if prefix == "" || strings.Contains(strings.ToLower(solution), strings.ToLower(prefix)) {
		return fmt.Sprintf("%s | %s", title, solution)
	}
	return fmt.Sprintf("%s | %s %s", title, prefix, solution)
}

// Inject writes one meta element per entry into doc.Head and sets the title
// element. The title entry carries the branded title.
func Inject(doc *doctree.Document, front frontmatter.Fields, data map[string]any, opts Options) []Entry {
	entries := Collect(front, data)
	var title string
	for i, e := range entries {
		if strings.EqualFold(e.Name, "title") {
			title = Title(e.Content, front, opts)
			entries[i].Content = title
		}
	}

	if title != "" {
		t := doctree.Element("title")
		t.AppendChild(doctree.Text(title))
		doc.Head.AppendChild(t)
	}
	for _, e := range entries {
		doc.Head.AppendChild(doctree.Element("meta", "name", e.Name, "content", e.Content))
	}
	return entries
}
