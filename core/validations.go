package core

import (
	"strings"
)

const MaxTitleLength = 100

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if len(title) == 0 {
		return NewValidationError("title", "is required")
	}

	if len(title) > MaxTitleLength {
		return NewValidationError("title", "is too long (100 characters tops)")
	}

	return nil
}

// ValidateDraft checks a create input. An end before the start is accepted as is.
func ValidateDraft(draft Draft) error {
	err := validateTitle(draft.Title)
	if err != nil {
		return err
	}

	if draft.Start.IsZero() {
		return NewValidationError("start", "is required")
	}

	return nil
}

func ValidatePatch(patch Patch) error {
	if patch.Title != nil {
		err := validateTitle(*patch.Title)
		if err != nil {
			return err
		}
	}

	if patch.Start != nil && patch.Start.IsZero() {
		return NewValidationError("start", "is required")
	}

	return nil
}

// ValidateEvent checks a full event as received by the remote store.
func ValidateEvent(event Event) error {
	return validateTitle(event.Title)
}
