package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown               = "UNKNOWN"
	CodeScriptTokenize        = "SCRIPT_TOKENIZE"
	CodeScriptParse           = "SCRIPT_PARSE"
	CodeScriptLoad            = "SCRIPT_LOAD"
	CodeCatalogEmpty          = "CATALOG_EMPTY"
	CodeCatalogChanged        = "CATALOG_CHANGED"
	CodeGenerationFailed      = "GENERATION_FAILED"
	CodeRerollUsed            = "REROLL_USED"
	CodeRerollTargetNotFound  = "REROLL_TARGET_NOT_FOUND"
	CodeRerollFailed          = "REROLL_FAILED"
	CodeRerollUnknownCategory = "REROLL_UNKNOWN_CATEGORY"
	CodeNotFound              = "NOT_FOUND"
)

// BaseCodes lists every code the base locale must translate.
var BaseCodes = []Code{
	CodeUnknown,
	CodeScriptTokenize,
	CodeScriptParse,
	CodeScriptLoad,
	CodeCatalogEmpty,
	CodeCatalogChanged,
	CodeGenerationFailed,
	CodeRerollUsed,
	CodeRerollTargetNotFound,
	CodeRerollFailed,
	CodeRerollUnknownCategory,
	CodeNotFound,
}
