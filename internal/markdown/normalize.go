package markdown

import (
	"strings"
)

const (
	fence = "```"
	// fencePlaceholder stands in for a backtick run that must stay literal.
	// Private-use runes pass through goldmark and the HTML renderer untouched.
	fencePlaceholder = "\uE000\uE001\uE000"
)

// Prenormalize escapes triple-backtick runs that do not start a line, so the
// Markdown engine never reads them as a code fence or a code span delimiter.
// Leading indentation and blockquote markers still count as the start of a line.
func Prenormalize(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	if !strings.Contains(src, fence) {
		return src
	}
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = escapeLine(line)
	}
	return strings.Join(lines, "\n")
}

func escapeLine(line string) string {
	var b strings.Builder
	rest := line
	for {
		idx := strings.Index(rest, fence)
		if idx < 0 {
			b.WriteString(rest)
			return b.String()
		}
		prefix := rest[:idx]
		b.WriteString(prefix)
		if strings.Trim(b.String(), " \t>") == "" {
			b.WriteString(fence)
		} else {
			b.WriteString(fencePlaceholder)
		}
		rest = rest[idx+len(fence):]
		// A longer run stays intact after its first three backticks.
		for strings.HasPrefix(rest, "`") {
			b.WriteByte('`')
			rest = rest[1:]
		}
	}
}

// Postnormalize restores the backtick runs escaped by Prenormalize.
func Postnormalize(out string) string {
	return strings.ReplaceAll(out, fencePlaceholder, fence)
}
