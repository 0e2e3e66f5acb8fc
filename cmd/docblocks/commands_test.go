package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docblocks/internal/convert"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("docblocks"), kong.Exit(func(int) {}))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	err = ctx.Run(&Global{Out: &out})
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvert_Markdown(t *testing.T) {
	file := writeFile(t, "intro.md", "---\ntitle: Intro\n---\n# Intro\n\n> [!NOTE]\n> Hello.\n")

	out, err := run(t, "convert", file, "--brand", "Docs")
	require.NoError(t, err)
	assert.Contains(t, out, "<title>Intro | Docs</title>")
	assert.Contains(t, out, `<span class="icon icon-info"></span>Note`)
}

func TestConvert_OriginalAndJSON(t *testing.T) {
	file := writeFile(t, "page.md", "# Page\n")

	out, err := run(t, "convert", file, "--original")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="page">Page</h1>`)

	out, err = run(t, "convert", file, "--json", "--page-type", "DocLanding", "--path", "/docs/page")
	require.NoError(t, err)
	var res convert.Output
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.ConvertedHTML)
	assert.NotEmpty(t, res.OriginalHTML)
}

func TestConvert_WritesFragments(t *testing.T) {
	var md strings.Builder
	for range 3 {
		md.WriteString("## Section\n\n")
		for range 4 {
			md.WriteString("![x](/img.png)\n\n")
		}
	}
	file := writeFile(t, "big.md", md.String())
	dir := t.TempDir()

	_, err := run(t, "convert", file, "--out", dir, "--image-budget", "4", "--page-type", "DocLanding", "--path", "/docs/big")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "fragments", "docs", "big", "fragment-0.html"))
	assert.NoError(t, err)
}

func TestConvert_DataRecord(t *testing.T) {
	file := writeFile(t, "page.md", "# Page\n")
	data := writeFile(t, "page.json", `{"breadcrumbs":[{"title":"Home","url":"/"}]}`)

	out, err := run(t, "convert", file, "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, `class="breadcrumbs"`)
}

func TestConvert_Errors(t *testing.T) {
	_, err := run(t, "convert", writeFile(t, "page.md", "# P\n"), "--page-type", "Blog")
	assert.ErrorContains(t, err, "unknown page type")

	_, err = run(t, "convert", writeFile(t, "tool.exe", "MZ"))
	assert.ErrorContains(t, err, "unsupported file extension")

	_, err = run(t, "convert", writeFile(t, "bad.md", "---\ntitle: x\n"))
	assert.Error(t, err)
}

func TestPipeline(t *testing.T) {
	out, err := run(t, "pipeline")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 20)
	assert.Contains(t, out, "images (after external-links)")
	assert.Contains(t, lines[len(lines)-1], "block-validation")
}
