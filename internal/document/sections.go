package document

import (
	"strings"

	"github.com/danieljhkim/docmerge/internal/textbuf"
)

const maxHeadingLevel = 6

// DeriveSections splits body into sections at heading lines. A heading line
// starts with one to six '#' characters followed by a space; its level is
// the number of '#'. Each section runs from the start of its heading line
// to the start of the next heading line of any level, or to the end of the
// body. Offsets are in UTF-16 code units.
func DeriveSections(body string) []Section {
	var sections []Section

	offset := 0
	for _, line := range strings.SplitAfter(body, "\n") {
		if line == "" {
			continue
		}
		if heading, level, ok := parseHeading(line); ok {
			if n := len(sections); n > 0 {
				sections[n-1].End = offset
			}
			sections = append(sections, Section{
				Heading: heading,
				Level:   level,
				Start:   offset,
			})
		}
		offset += textbuf.Len(line)
	}

	if n := len(sections); n > 0 {
		sections[n-1].End = offset
	}
	return sections
}

func parseHeading(line string) (string, int, bool) {
	line = strings.TrimRight(line, "\r\n")
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > maxHeadingLevel {
		return "", 0, false
	}
	rest := line[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", 0, false
	}
	heading := strings.TrimSpace(rest)
	if heading == "" {
		return "", 0, false
	}
	return heading, level, true
}

// SectionAt returns the innermost-starting section containing offset, i.e.
// the last section whose start is at or before offset and whose end is
// after it.
func SectionAt(sections []Section, offset int) (Section, bool) {
	var found Section
	ok := false
	for _, s := range sections {
		if s.Start <= offset && offset < s.End {
			found = s
			ok = true
		}
	}
	return found, ok
}
