package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidDocument is returned when a snapshot fails validation.
var ErrInvalidDocument = errors.New("invalid document")

var docValidate *validator.Validate

func init() {
	docValidate = validator.New()
	_ = docValidate.RegisterValidation("docid", validateDocID)
}

// validateDocID rejects ids that would escape a storage directory when used
// as a file name.
func validateDocID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return id != "." && id != ".." && !strings.ContainsAny(id, "/\\")
}

// Validate checks field constraints, unique annotation ids and that explicit
// sections lie inside the body.
func (d *Document) Validate() error {
	if err := docValidate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	seen := make(map[string]bool, len(d.Annotations))
	for _, a := range d.Annotations {
		if seen[a.ID] {
			return fmt.Errorf("%w: duplicate annotation id %q", ErrInvalidDocument, a.ID)
		}
		seen[a.ID] = true
	}

	n := d.Buffer().Len()
	for _, s := range d.Sections {
		if s.End > n {
			return fmt.Errorf("%w: section %q ends at %d past body length %d", ErrInvalidDocument, s.Heading, s.End, n)
		}
	}
	return nil
}
