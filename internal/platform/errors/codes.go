// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Script errors
	CodeScriptTokenize Code = "SCRIPT_TOKENIZE"
	CodeScriptParse    Code = "SCRIPT_PARSE"
	CodeScriptLoad     Code = "SCRIPT_LOAD"

	// Catalog errors
	CodeCatalogEmpty   Code = "CATALOG_EMPTY"
	CodeCatalogChanged Code = "CATALOG_CHANGED"

	// Generation errors
	CodeGenerationFailed Code = "GENERATION_FAILED"

	// Reroll errors
	CodeRerollUsed            Code = "REROLL_USED"
	CodeRerollTargetNotFound  Code = "REROLL_TARGET_NOT_FOUND"
	CodeRerollFailed          Code = "REROLL_FAILED"
	CodeRerollUnknownCategory Code = "REROLL_UNKNOWN_CATEGORY"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// Kind groups codes by how a caller should react to them.
type Kind int

const (
	// KindInternal is an unexpected failure.
	KindInternal Kind = iota
	// KindInvalidArgument is bad caller input.
	KindInvalidArgument
	// KindFailedPrecondition means the current state does not allow the operation.
	KindFailedPrecondition
	// KindNotFound means a referenced resource does not exist.
	KindNotFound
	// KindUnavailable is an expected business outcome the caller may retry.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindFailedPrecondition:
		return "failed_precondition"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// ExitCode maps a kind to a process exit status.
func (k Kind) ExitCode() int {
	switch k {
	case KindInvalidArgument:
		return 2
	case KindFailedPrecondition:
		return 3
	case KindNotFound:
		return 4
	case KindUnavailable:
		return 5
	default:
		return 1
	}
}

// Kind maps domain codes to their kind.
func (c Code) Kind() Kind {
	switch c {
	// InvalidArgument - malformed input
	case CodeScriptTokenize,
		CodeScriptParse,
		CodeRerollUnknownCategory:
		return KindInvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeRerollUsed,
		CodeCatalogEmpty,
		CodeCatalogChanged:
		return KindFailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeRerollTargetNotFound:
		return KindNotFound

	// Unavailable - no valid combination this time
	case CodeGenerationFailed,
		CodeRerollFailed:
		return KindUnavailable

	default:
		return KindInternal
	}
}
