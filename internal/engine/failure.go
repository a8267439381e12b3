package engine

import (
	"fmt"

	apperrors "github.com/louisbranch/empiregen/internal/platform/errors"
)

// Generation steps named by GenerationFailure.
const (
	StepEthics           = "ethics"
	StepAuthority        = "authority"
	StepCivics           = "civics"
	StepOrigin           = "origin"
	StepArchetype        = "archetype"
	StepSpeciesClass     = "species_class"
	StepTraits           = "traits"
	StepHomeworld        = "homeworld"
	StepShipset          = "shipset"
	StepLeader           = "leader"
	StepSecondarySpecies = "secondary_species"
)

// GenerationFailure reports a step whose candidate set was empty. It is an
// expected outcome: callers may simply generate again.
type GenerationFailure struct {
	Step   string
	Reason string
	State  State
}

func (f *GenerationFailure) Error() string {
	if f.Reason == "" {
		return fmt.Sprintf("generation failed at %s: state %s", f.Step, f.State)
	}
	return fmt.Sprintf("generation failed at %s: %s: state %s", f.Step, f.Reason, f.State)
}

// ErrorCode implements apperrors.Coded.
func (f *GenerationFailure) ErrorCode() apperrors.Code { return apperrors.CodeGenerationFailed }

// ErrorMetadata supplies template values for the localized message.
func (f *GenerationFailure) ErrorMetadata() map[string]string {
	return map[string]string{"Step": f.Step}
}

func failAt(step string, s State, format string, args ...any) *GenerationFailure {
	return &GenerationFailure{Step: step, State: s, Reason: fmt.Sprintf(format, args...)}
}

// RerollFailure reports that a category has no valid alternative. The
// session is left untouched.
type RerollFailure struct {
	Category RerollCategory
	Reason   string
}

func (f *RerollFailure) Error() string {
	return fmt.Sprintf("reroll %s: %s", f.Category, f.Reason)
}

// ErrorCode implements apperrors.Coded.
func (f *RerollFailure) ErrorCode() apperrors.Code { return apperrors.CodeRerollFailed }

// ErrorMetadata supplies template values for the localized message.
func (f *RerollFailure) ErrorMetadata() map[string]string {
	return map[string]string{"Category": string(f.Category)}
}

func rerollFailed(c RerollCategory, format string, args ...any) *RerollFailure {
	return &RerollFailure{Category: c, Reason: fmt.Sprintf(format, args...)}
}

// ErrRerollUsed is returned by every reroll after the session's one reroll
// has been spent.
var ErrRerollUsed = apperrors.New(apperrors.CodeRerollUsed, "reroll already used for this generation")

func targetNotFound(c RerollCategory, target string) error {
	return apperrors.WithMetadata(apperrors.CodeRerollTargetNotFound,
		fmt.Sprintf("reroll %s: %s not found", c, target),
		map[string]string{"Category": string(c), "Target": target})
}

func unknownCategory(c string) error {
	return apperrors.WithMetadata(apperrors.CodeRerollUnknownCategory,
		fmt.Sprintf("unknown reroll category %q", c),
		map[string]string{"Category": c})
}
