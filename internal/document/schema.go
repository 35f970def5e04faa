package document

import (
	"time"

	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// Document is a snapshot of a remote document.
type Document struct {
	// ID is the document identifier
	ID string `json:"id" yaml:"id" validate:"required,max=128,docid"`

	// Title is an optional human-readable title
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Body is the flattened document text
	Body string `json:"body" yaml:"body"`

	// Annotations are the comments attached to the body
	Annotations []Annotation `json:"annotations" yaml:"annotations" validate:"dive"`

	// Sections optionally overrides heading detection
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty" validate:"dive"`

	// Revision fingerprints the body at read time
	Revision string `json:"revision,omitempty" yaml:"revision,omitempty"`

	// UpdatedAt is when the body last changed
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Annotation is a comment anchored to a span of the body through its quoted
// anchor text.
type Annotation struct {
	// ID is the annotation identifier
	ID string `json:"id" yaml:"id" validate:"required"`

	// AnchorText is the verbatim text captured when the annotation was
	// created. Empty for document-level annotations.
	AnchorText string `json:"anchor_text" yaml:"anchor_text"`

	// Content is the comment payload
	Content string `json:"content" yaml:"content"`

	// Author is the display name of the author
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// CreatedAt is the creation time
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Resolved marks a closed discussion
	Resolved bool `json:"resolved,omitempty" yaml:"resolved,omitempty"`

	// Orphaned marks an annotation whose anchored text no longer exists
	Orphaned bool `json:"orphaned,omitempty" yaml:"orphaned,omitempty"`

	// Replies are follow-up comments
	Replies []Reply `json:"replies,omitempty" yaml:"replies,omitempty" validate:"dive"`
}

// Reply is a follow-up on an annotation.
type Reply struct {
	ID        string    `json:"id" yaml:"id" validate:"required"`
	Author    string    `json:"author,omitempty" yaml:"author,omitempty"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Section is a heading and the body span it governs: from the start of the
// heading line to the start of the next heading (or the end of the body).
type Section struct {
	Heading string `json:"heading" yaml:"heading" validate:"required"`
	Level   int    `json:"level" yaml:"level" validate:"gte=1,lte=6"`
	Start   int    `json:"start" yaml:"start" validate:"gte=0"`
	End     int    `json:"end" yaml:"end" validate:"gtefield=Start"`
}

// Range returns the section span.
func (s Section) Range() textbuf.Range {
	return textbuf.Range{Start: s.Start, End: s.End}
}

// Buffer returns the body as a code-unit buffer.
func (d *Document) Buffer() textbuf.Buffer {
	return textbuf.New(d.Body)
}

// Active returns the annotations that should be located: anchored, not
// orphaned and, unless includeResolved is set, unresolved.
func (d *Document) Active(includeResolved bool) []Annotation {
	var out []Annotation
	for _, a := range d.Annotations {
		if a.AnchorText == "" || a.Orphaned {
			continue
		}
		if a.Resolved && !includeResolved {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Annotation looks up an annotation by ID.
func (d *Document) Annotation(id string) (Annotation, bool) {
	for _, a := range d.Annotations {
		if a.ID == id {
			return a, true
		}
	}
	return Annotation{}, false
}

// SectionList returns the explicit sections if any were supplied, otherwise
// the sections derived from the body's headings.
func (d *Document) SectionList() []Section {
	if len(d.Sections) > 0 {
		return d.Sections
	}
	return DeriveSections(d.Body)
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	if d.Annotations != nil {
		out.Annotations = make([]Annotation, len(d.Annotations))
		for i, a := range d.Annotations {
			if a.Replies != nil {
				a.Replies = append([]Reply(nil), a.Replies...)
			}
			out.Annotations[i] = a
		}
	}
	if d.Sections != nil {
		out.Sections = append([]Section(nil), d.Sections...)
	}
	return &out
}
