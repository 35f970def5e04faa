package document

import (
	"fmt"
	"strings"

	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// QuoteLength caps the anchor text quoted in summaries.
const QuoteLength = 50

// Summary renders the annotations as a human-readable digest, one block per
// annotation with its quoted anchor and replies.
func Summary(anns []Annotation) string {
	if len(anns) == 0 {
		return "No comments found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d comment(s):\n", len(anns))

	for i, a := range anns {
		b.WriteString("\n")
		author := a.Author
		if author == "" {
			author = "Unknown"
		}
		fmt.Fprintf(&b, "%d. %s", i+1, author)
		if !a.CreatedAt.IsZero() {
			fmt.Fprintf(&b, " (%s)", a.CreatedAt.Format("2006-01-02"))
		}
		switch {
		case a.Orphaned:
			b.WriteString(" [orphaned]")
		case a.Resolved:
			b.WriteString(" [resolved]")
		}
		b.WriteString("\n")

		if a.AnchorText != "" {
			fmt.Fprintf(&b, "   On: %q\n", quote(a.AnchorText))
		}
		fmt.Fprintf(&b, "   %s\n", a.Content)

		for _, r := range a.Replies {
			author := r.Author
			if author == "" {
				author = "Unknown"
			}
			fmt.Fprintf(&b, "   ↳ %s: %s\n", author, r.Content)
		}
	}
	return b.String()
}

func quote(s string) string {
	short := textbuf.Truncate(s, QuoteLength)
	if short != s {
		return short + "..."
	}
	return s
}
