package services

import "errors"

// Service-level sentinels. Engine errors (brackets.ValidationError and
// friends) pass through untouched; these cover concerns the engine does not
// own.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrEmailTaken         = errors.New("email address is already in use")

	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	ErrTournamentNameRequired          = errors.New("tournament name is required")
	ErrTournamentNameConflict          = errors.New("tournament name already exists")
	ErrTournamentNotFound              = errors.New("tournament not found")
	ErrTournamentInvalidBestOf         = errors.New("tournament best-of must be a positive odd number")
	ErrTournamentInvalidStatus         = errors.New("invalid tournament status provided")
	ErrTournamentStatusTransition      = errors.New("invalid tournament status transition")
	ErrTournamentBracketExists         = errors.New("tournament already has a generated bracket")
	ErrTournamentRegistrationNotOpen   = errors.New("tournament registration is not open")
	ErrTournamentNotCompleted          = errors.New("tournament is not completed yet")
	ErrEntrantNotFound                 = errors.New("entrant not found")
	ErrEntrantNameTaken                = errors.New("entrant display name already registered")
	ErrEntrantRegistrationNameRequired = errors.New("entrant display name is required")
)
