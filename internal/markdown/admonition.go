package markdown

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	admonitionStart = regexp.MustCompile(`^>\s*\[!([A-Za-z][A-Za-z-]*)\]\s*(.*)$`)
	videoAdmonition = regexp.MustCompile(`^>\s*\[!VIDEO\]\(([^)\s]+)\)\s*$`)
	fenceLine       = regexp.MustCompile("^\\s*(```|~~~)")
)

// RewriteAdmonitions turns `> [!TYPE]` blockquotes into extension containers
// the block transforms understand:
//
//	> [!WARNING]            <div class="extension warning">
//	> Mind the gap.   =>
//	                        Mind the gap.
//
//	                        </div>
//
// `> [!VIDEO](url)` becomes an empty video container carrying data-src.
// Lines inside fenced code are left alone.
func RewriteAdmonitions(src string) string {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	inCode := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fenceLine.MatchString(line) {
			inCode = !inCode
		}
		if inCode {
			out = append(out, line)
			continue
		}

		if m := videoAdmonition.FindStringSubmatch(line); m != nil {
			out = append(out, "",
				fmt.Sprintf(`<div class="extension video" data-src="%s"></div>`, html.EscapeString(m[1])),
				"")
			continue
		}

		m := admonitionStart.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}

		var body []string
		if rest := strings.TrimSpace(m[2]); rest != "" {
			body = append(body, rest)
		}
		for i+1 < len(lines) && strings.HasPrefix(lines[i+1], ">") {
			i++
			body = append(body, stripQuote(lines[i]))
		}

		out = append(out, "", fmt.Sprintf(`<div class="extension %s">`, strings.ToLower(m[1])), "")
		out = append(out, body...)
		out = append(out, "", "</div>", "")
	}
	return strings.Join(out, "\n")
}

func stripQuote(line string) string {
	line = strings.TrimPrefix(line, ">")
	return strings.TrimPrefix(line, " ")
}
