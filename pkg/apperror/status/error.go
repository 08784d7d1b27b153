package status

// ErrorCode is a numeric code to classify API errors in a stable way
type ErrorCode int

// Reserved ranges:
//   0-999:     client errors
//   1000-1999: annotation internal errors

const (
	BadRequestBase    ErrorCode = 0
	InternalErrorBase ErrorCode = 1000
)

// Annotate client/validation errors
const (
	AnnotateInvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	AnnotateMissingParams                                        // 1
	AnnotateUnknownGlyph                                         // 2
)

// Annotate internal errors start at 1000
const (
	AnnotateInternal          ErrorCode = InternalErrorBase + iota // 1000
	AnnotateSchemaViolation                                        // 1001
	AnnotateSchemaUnsupported                                      // 1002
)

// Deprecated: prefer domain-specific internal codes above
const (
	ErrorCodeInternal ErrorCode = 9000
)

// IsClientError reports whether code belongs to the client range.
func (c ErrorCode) IsClientError() bool {
	return c >= BadRequestBase && c < InternalErrorBase
}

// CodedError represents an error with an associated ErrorCode
type CodedError interface {
	error
	ErrorCode() ErrorCode
}

type codedError struct {
	code ErrorCode
	err  error
}

func (e codedError) Error() string        { return e.err.Error() }
func (e codedError) Unwrap() error        { return e.err }
func (e codedError) ErrorCode() ErrorCode { return e.code }

// New creates a new CodedError with the given code and underlying error
func New(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return codedError{code: code, err: err}
}
