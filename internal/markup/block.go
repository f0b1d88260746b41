package markup

import "strings"

type blockKind int

const (
	blockHeading blockKind = iota
	blockCode
	blockQuote
	blockListItem
	blockParagraph
)

// block is one node of the parsed tree. Inline spans are resolved later,
// during emission; code blocks carry their content verbatim.
type block struct {
	kind    blockKind
	level   int  // heading level 1-3
	ordered bool // list item kind
	text    string
}

// parse lexes the input line by line into a flat block sequence. Blank lines
// separate blocks and produce nothing. Fenced code swallows everything up to
// the closing fence (or end of input) without further parsing.
func parse(input string) []block {
	var blocks []block
	lines := strings.Split(input, "\n")

	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")

		switch {
		case line == "":
			// block separator

		case strings.HasPrefix(line, "```"):
			var body []string
			i++
			for ; i < len(lines); i++ {
				inner := strings.TrimRight(lines[i], "\r")
				if strings.HasPrefix(inner, "```") {
					break
				}
				body = append(body, inner)
			}
			blocks = append(blocks, block{kind: blockCode, text: strings.Join(body, "\n")})

		case strings.HasPrefix(line, "### "):
			blocks = append(blocks, block{kind: blockHeading, level: 3, text: line[4:]})
		case strings.HasPrefix(line, "## "):
			blocks = append(blocks, block{kind: blockHeading, level: 2, text: line[3:]})
		case strings.HasPrefix(line, "# "):
			blocks = append(blocks, block{kind: blockHeading, level: 1, text: line[2:]})

		case strings.HasPrefix(line, "> "):
			blocks = append(blocks, block{kind: blockQuote, text: line[2:]})

		case strings.HasPrefix(line, "- "):
			blocks = append(blocks, block{kind: blockListItem, text: line[2:]})

		default:
			if text, ok := orderedItem(line); ok {
				blocks = append(blocks, block{kind: blockListItem, ordered: true, text: text})
				break
			}
			blocks = append(blocks, block{kind: blockParagraph, text: line})
		}
	}
	return blocks
}

// orderedItem reports whether line has the shape "N. item" with N a run of
// digits, returning the item text.
func orderedItem(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || !strings.HasPrefix(line[i:], ". ") {
		return "", false
	}
	return line[i+2:], true
}
