package parsers

import (
	"io"

	"github.com/username/recupera/backend/src/models"
)

// Parser turns one government file layout into a normalized document.
// Implementations degrade gracefully: a line that cannot be fully parsed
// is emitted with zeroed optional fields and a FieldError rather than
// aborting the document. Only a missing mandatory header field returns
// models.ErrMalformedDocument.
type Parser interface {
	Parse(file io.Reader) (*models.ParsedDocument, error)
}
