package courses

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrIdentifierMalformed reports a path without both a category and a filename segment.
	ErrIdentifierMalformed = errors.New("identifier must contain a category and a filename")
	// ErrFilenameMalformed reports a filename without id and datetime tokens.
	ErrFilenameMalformed = errors.New("filename must contain id and datetime segments")
	// ErrDatetimeMalformed reports a datetime token that is not a valid YYYYMMDDhhmmss value.
	ErrDatetimeMalformed = errors.New("datetime must be 14 digits in YYYYMMDDhhmmss form")
	// ErrIDNotNumeric reports an id token that is not a base-10 number.
	ErrIDNotNumeric = errors.New("id must be numeric")
)

const (
	textCodeIdentifier = "COURSE_IDENTIFIER_MALFORMED"
	textCodeFilename   = "COURSE_FILENAME_MALFORMED"
	textCodeDatetime   = "COURSE_DATETIME_MALFORMED"
	textCodeID         = "COURSE_ID_NOT_NUMERIC"
	textCodeUnknown    = "COURSE_DOCUMENT_INVALID"
)

// wrapDocumentError tags a per-document parse failure so callers inspecting
// Failures can branch on category or text code.
func wrapDocumentError(path string, err error) error {
	if err == nil {
		return nil
	}
	code := textCodeUnknown
	switch {
	case errors.Is(err, ErrIdentifierMalformed):
		code = textCodeIdentifier
	case errors.Is(err, ErrFilenameMalformed):
		code = textCodeFilename
	case errors.Is(err, ErrDatetimeMalformed):
		code = textCodeDatetime
	case errors.Is(err, ErrIDNotNumeric):
		code = textCodeID
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "course document skipped: "+path).
		WithTextCode(code)
}
