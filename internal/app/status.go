package app

import (
	"errors"
	"fmt"
)

// StatusKind separates informational messages from errors
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusError
)

// Status is a human-readable message for the presenter
type Status struct {
	Kind    StatusKind
	Message string
}

// IsError reports whether the status should be shown as an error
func (s Status) IsError() bool {
	return s.Kind == StatusError
}

// StatusFunc receives every status message the service emits
type StatusFunc func(Status)

// Status messages shown to the user
const (
	MsgLoading          = "Loading all countries"
	MsgReady            = "Type a country name and press search."
	MsgNothing          = "Nothing to show."
	MsgFavoriteNotSaved = "Favorite not saved."
	msgTooShortFmt      = "Type at least %d characters."
	msgResultsFmt       = "%d results • Page %d/%d"
)

// ErrFavoriteNotSaved is returned when a favorites toggle could not be stored
var ErrFavoriteNotSaved = errors.New("favorite not saved")

// ErrValidationFailed matches every *ValidationError with errors.Is
var ErrValidationFailed = errors.New("validation failed")

// ValidationError is returned for queries that are too short to search
type ValidationError struct {
	Query     string
	MinLength int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: query %q is shorter than %d characters", ErrValidationFailed, e.Query, e.MinLength)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
