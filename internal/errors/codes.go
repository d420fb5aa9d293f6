package errors

// Code represents an error code
type Code string

// General purpose codes
const (
	CodeOK               Code = "OK"
	CodeCanceled         Code = "CANCELED"
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeInternal         Code = "INTERNAL"
	CodeUnavailable      Code = "UNAVAILABLE"
	CodeDeadlineExceeded Code = "DEADLINE_EXCEEDED"
)

// Record processing codes
const (
	// CodeShapeMismatch means a tree value did not have the shape the
	// caller narrowed it to (object, array, scalar or a scalar kind).
	CodeShapeMismatch Code = "SHAPE_MISMATCH"

	// CodeUnknownCode means a lookup table has no entry for a source code.
	CodeUnknownCode Code = "UNKNOWN_CODE"

	// CodeMissingRequiredField means an algorithm cannot continue without a field.
	CodeMissingRequiredField Code = "MISSING_REQUIRED_FIELD"

	// CodeMissingOptionalField is reported as a warning, never returned from a phase.
	CodeMissingOptionalField Code = "MISSING_OPTIONAL_FIELD"
)

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// AbortsRecord reports whether an error with this code ends processing of
// the record it was raised for.
func (c Code) AbortsRecord() bool {
	switch c {
	case CodeOK, CodeMissingOptionalField:
		return false
	default:
		return true
	}
}
