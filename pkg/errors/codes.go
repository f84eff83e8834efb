package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal   ErrorCode = "COMMON_001"
	ErrCodeBadRequest ErrorCode = "COMMON_002"
	ErrCodeNotFound   ErrorCode = "COMMON_003"
	ErrCodeTimeout    ErrorCode = "COMMON_004"
	ErrCodeValidation ErrorCode = "COMMON_005"
	ErrCodeIO         ErrorCode = "COMMON_006"
)

// Merge Pipeline Error Codes
const (
	// ErrCodeNoPatternMatch: no declared pattern of either structure yields a
	// non-empty match against the first structure.
	ErrCodeNoPatternMatch ErrorCode = "MERGE_001"

	// ErrCodeMissingAnnotation: an annotation key is referenced on a bond or
	// structure but not present at all where the pipeline assumes its presence.
	ErrCodeMissingAnnotation ErrorCode = "MERGE_002"

	// ErrCodeMismatchedArity: match tuples of unequal length reached the
	// aligner or the merger.
	ErrCodeMismatchedArity ErrorCode = "MERGE_003"

	// ErrCodeBondNotFound: a bond lookup between two supposedly bonded atoms
	// failed during reconciliation or RCA4 rewriting.
	ErrCodeBondNotFound ErrorCode = "MERGE_004"

	// ErrCodeAtomIndex: an atom index is outside the structure's valid range.
	ErrCodeAtomIndex ErrorCode = "MERGE_005"
)

// Structure File Error Codes
const (
	ErrCodeFileParse ErrorCode = "FILE_001"
	ErrCodeFileWrite ErrorCode = "FILE_002"
)

// Minimisation Job Error Codes
const (
	ErrCodeMinimizeLaunch ErrorCode = "MINI_001"
	ErrCodeMinimizeFailed ErrorCode = "MINI_002"
)

// Aliases kept short for call-site readability.
const (
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeTimeout      = ErrCodeTimeout
	CodeValidation   = ErrCodeValidation
	CodeIO           = ErrCodeIO

	CodeNoPatternMatch    = ErrCodeNoPatternMatch
	CodeMissingAnnotation = ErrCodeMissingAnnotation
	CodeMismatchedArity   = ErrCodeMismatchedArity
	CodeBondNotFound      = ErrCodeBondNotFound
	CodeAtomIndex         = ErrCodeAtomIndex

	CodeFileParse = ErrCodeFileParse
	CodeFileWrite = ErrCodeFileWrite

	CodeMinimizeLaunch = ErrCodeMinimizeLaunch
	CodeMinimizeFailed = ErrCodeMinimizeFailed
)

// ExitCodeForCode maps an ErrorCode to a process exit status. Every fatal
// pipeline error family gets its own status so scripted callers can branch
// on the failure kind without parsing stderr.
func ExitCodeForCode(code ErrorCode) int {
	switch {
	case code == CodeOK:
		return 0
	case code == CodeInvalidParam || code == CodeValidation:
		return 2
	case strings.HasPrefix(code.String(), "MERGE_"):
		return 3
	case strings.HasPrefix(code.String(), "FILE_"):
		return 4
	case strings.HasPrefix(code.String(), "MINI_"):
		return 5
	default:
		return 1
	}
}
