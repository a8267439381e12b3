package empiregen

import (
	apperrors "github.com/louisbranch/empiregen/internal/platform/errors"
	"github.com/louisbranch/empiregen/internal/platform/errors/i18n"
)

// Describe returns the user-facing message and process exit code for err.
// Coded errors are localized; anything else is shown as is and exits 1.
func Describe(err error, locale string) (string, int) {
	if err == nil {
		return "", 0
	}
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeUnknown {
		return err.Error(), 1
	}
	msg := i18n.GetCatalog(locale).Format(string(code), apperrors.MetadataOf(err))
	return msg, code.Kind().ExitCode()
}
