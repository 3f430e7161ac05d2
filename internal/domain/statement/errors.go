package statement

import "errors"

// Pipeline stages wrap these sentinels so callers can branch on the failure
// class with errors.Is without depending on stage internals.
var (
	// ErrUnsupportedFormat means the declared file extension selects no decoder.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyInput means the file had no bytes or no non-empty rows.
	ErrEmptyInput = errors.New("file contains no data")

	// ErrMalformedInput means the bytes could not be decoded as delimited text
	// or a recognized spreadsheet container.
	ErrMalformedInput = errors.New("file could not be decoded")

	// ErrNoSchema means no column could be confidently identified as the date
	// or the amount field.
	ErrNoSchema = errors.New("could not identify date and amount columns")

	// ErrNoValidRows means every data row was rejected by the normalizer.
	ErrNoValidRows = errors.New("no rows could be normalized")
)

// Kind is the caller-facing classification of a parse failure, suitable for
// choosing a user-visible message.
type Kind string

const (
	KindUnsupportedFormat Kind = "unsupported_format"
	KindEmptyInput        Kind = "empty_input"
	KindMalformedInput    Kind = "malformed_input"
	KindSchemaInference   Kind = "schema_inference"
	KindNoValidRows       Kind = "no_valid_rows"
	KindUnknown           Kind = "unknown"
)

// KindOf maps any pipeline error to its taxonomy kind.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, ErrMalformedInput):
		return KindMalformedInput
	case errors.Is(err, ErrNoSchema):
		return KindSchemaInference
	case errors.Is(err, ErrNoValidRows):
		return KindNoValidRows
	default:
		return KindUnknown
	}
}
