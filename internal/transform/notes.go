package transform

import (
	"context"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
)

// noteIcons maps note types to icon names. Unmapped types use defaultNoteIcon.
var noteIcons = map[string]string{
	"success":   "check",
	"warning":   "alert",
	"caution":   "alert",
	"important": "alert",
	"error":     "close-circle",
	"tip":       "light-bulb",
}

const defaultNoteIcon = "info"

// NoteIcon returns the icon for a note type.
func NoteIcon(kind string) string {
	if icon, ok := noteIcons[kind]; ok {
		return icon
	}
	return defaultNoteIcon
}

// Notes converts admonition containers (`div.extension.{type}`, video
// excluded) into note blocks. The first row holds the icon and the heading;
// every remaining child gets a row of its own.
func Notes() Transformer {
	return New("notes", StageBlocks, Dependencies{}, func(ctx context.Context, tc *Context) error {
		title := cases.Title(languageOf(tc.Lang))
		for _, n := range doctree.FindAll(tc.Doc.Body, doctree.ByClass("extension")) {
			if !doctree.IsElement(n, "div") || doctree.HasClass(n, "video") {
				continue
			}
			doctree.RemoveClass(n, "extension")
			kind := "note"
			if classes := doctree.Classes(n); len(classes) > 0 {
				kind = block.ToClassName(classes[0])
			}

			b := block.New(block.Note, kind)
			icon := doctree.Element("span", "class", "icon icon-"+NoteIcon(kind))
			b.AddRow(block.NodeCell(icon, doctree.Text(title.String(kind))))
			for _, c := range doctree.Children(n) {
				if doctree.IsBlank(c) {
					continue
				}
				b.AddRow(block.NodeCell(c))
			}
			doctree.Replace(n, b.Encode())
		}
		return nil
	})
}

func languageOf(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	return tag
}
