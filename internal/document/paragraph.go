package document

import (
	"strings"

	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// ExcerptLength is the number of code units kept in a paragraph excerpt.
const ExcerptLength = 40

// Paragraph locates a text position for humans: which paragraph it is in and
// how that paragraph begins.
type Paragraph struct {
	Index   int    `json:"paragraph_index"`
	Excerpt string `json:"excerpt"`
}

// ParagraphAt returns the paragraph containing offset. Paragraphs are
// newline-separated lines; blank lines are not counted. Offsets past the end
// land in the last paragraph.
func ParagraphAt(body string, offset int) (Paragraph, bool) {
	pos := 0
	index := -1
	var last Paragraph
	found := false

	for _, line := range strings.SplitAfter(body, "\n") {
		if line == "" {
			continue
		}
		width := textbuf.Len(line)
		text := strings.TrimSpace(line)
		if text != "" {
			index++
			last = Paragraph{Index: index, Excerpt: textbuf.Truncate(text, ExcerptLength)}
			found = true
			if offset < pos+width {
				return last, true
			}
		}
		pos += width
	}
	return last, found
}
