package appsync

import apperrors "github.com/alexjbarnes/appsync/internal/errors"

// Error is a failure mapped from the server or the sync protocol. Match
// it against the kinds below with errors.Is; kinds include their
// ancestors, so errors.Is(err, ErrAuth) holds for invalid credentials.
type Error = apperrors.Error

// Kind is the category a mapped error belongs to.
type Kind = apperrors.Kind

const (
	ErrApp                       = apperrors.ErrApp
	ErrService                   = apperrors.ErrService
	ErrConnection                = apperrors.ErrConnection
	ErrBadRequest                = apperrors.ErrBadRequest
	ErrCredentialsCannotBeLinked = apperrors.ErrCredentialsCannotBeLinked
	ErrFunctionExecution         = apperrors.ErrFunctionExecution
	ErrAuth                      = apperrors.ErrAuth
	ErrInvalidCredentials        = apperrors.ErrInvalidCredentials
	ErrUserAlreadyConfirmed      = apperrors.ErrUserAlreadyConfirmed
	ErrUserNotFound              = apperrors.ErrUserNotFound
	ErrUserAlreadyExists         = apperrors.ErrUserAlreadyExists
	ErrSync                      = apperrors.ErrSync
	ErrUnrecoverableSync         = apperrors.ErrUnrecoverableSync
	ErrWrongSyncType             = apperrors.ErrWrongSyncType
	ErrBadFlexibleSyncQuery      = apperrors.ErrBadFlexibleSyncQuery
	ErrIllegalState              = apperrors.ErrIllegalState
	ErrIllegalArgument           = apperrors.ErrIllegalArgument
)

var (
	ErrAppClosed         = apperrors.ErrAppClosed
	ErrNotLoggedIn       = apperrors.ErrNotLoggedIn
	ErrAuthEventOverflow = apperrors.ErrAuthEventOverflow
	ErrNoSyncEngine      = apperrors.ErrNoSyncEngine
	ErrMutableSetOpen    = apperrors.ErrMutableSetOpen
)

// IsTransient reports whether err is safe to retry.
func IsTransient(err error) bool {
	return apperrors.IsTransient(err)
}
