// Package markup converts the restricted markdown subset produced by the
// assistant into HTML markup. The renderer trusts its input: it is not a
// sanitizer and must only be fed raw source text, exactly once per message
// (re-rendering already-rendered markup is undefined).
package markup

import (
	"fmt"
	"strings"
)

// Render transforms text into markup. It is pure and deterministic.
func Render(text string) string {
	blocks := parse(text)

	var b strings.Builder
	inList := false
	listOrdered := false

	closeList := func() {
		if !inList {
			return
		}
		if listOrdered {
			b.WriteString("</ol>\n")
		} else {
			b.WriteString("</ul>\n")
		}
		inList = false
	}

	for _, blk := range blocks {
		if blk.kind == blockListItem {
			if inList && listOrdered != blk.ordered {
				closeList()
			}
			if !inList {
				if blk.ordered {
					b.WriteString("<ol>\n")
				} else {
					b.WriteString("<ul>\n")
				}
				inList = true
				listOrdered = blk.ordered
			}
			b.WriteString("<li>")
			b.WriteString(renderInline(blk.text))
			b.WriteString("</li>\n")
			continue
		}
		closeList()

		switch blk.kind {
		case blockHeading:
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", blk.level, renderInline(blk.text), blk.level)
		case blockCode:
			b.WriteString("<pre><code>")
			b.WriteString(blk.text)
			b.WriteString("</code></pre>\n")
		case blockQuote:
			b.WriteString("<blockquote>")
			b.WriteString(renderInline(blk.text))
			b.WriteString("</blockquote>\n")
		case blockParagraph:
			b.WriteString("<p>")
			b.WriteString(renderInline(blk.text))
			b.WriteString("</p>\n")
		}
	}
	closeList()

	return strings.TrimSuffix(b.String(), "\n")
}
