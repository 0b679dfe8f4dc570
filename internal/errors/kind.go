package errors

// Kind is the exception kind an error maps to. Kinds form a tree: a kind
// matches itself and every ancestor under errors.Is, so an
// InvalidCredentialsError is also an AuthError, a ServiceError and an
// AppError.
type Kind string

func (k Kind) Error() string { return string(k) }

// Parent returns the enclosing kind, or "" for a root kind.
func (k Kind) Parent() Kind { return kindParents[k] }

// Within reports whether k equals target or descends from it.
func (k Kind) Within(target Kind) bool {
	for cur := k; cur != ""; cur = cur.Parent() {
		if cur == target {
			return true
		}
	}

	return false
}

const (
	ErrApp Kind = "AppError"

	ErrService                   Kind = "ServiceError"
	ErrConnection                Kind = "ConnectionError"
	ErrBadRequest                Kind = "BadRequestError"
	ErrCredentialsCannotBeLinked Kind = "CredentialsCannotBeLinkedError"
	ErrFunctionExecution         Kind = "FunctionExecutionError"

	ErrAuth                 Kind = "AuthError"
	ErrInvalidCredentials   Kind = "InvalidCredentialsError"
	ErrUserAlreadyConfirmed Kind = "UserAlreadyConfirmedError"
	ErrUserNotFound         Kind = "UserNotFoundError"
	ErrUserAlreadyExists    Kind = "UserAlreadyExistsError"

	ErrSync                 Kind = "SyncError"
	ErrUnrecoverableSync    Kind = "UnrecoverableSyncError"
	ErrWrongSyncType        Kind = "WrongSyncTypeError"
	ErrBadFlexibleSyncQuery Kind = "BadFlexibleSyncQueryError"

	// Programming errors. These are roots and never descend from ErrApp.
	ErrIllegalState    Kind = "IllegalStateError"
	ErrIllegalArgument Kind = "IllegalArgumentError"
)

var kindParents = map[Kind]Kind{
	ErrService:                   ErrApp,
	ErrConnection:                ErrService,
	ErrBadRequest:                ErrService,
	ErrCredentialsCannotBeLinked: ErrService,
	ErrFunctionExecution:         ErrService,
	ErrAuth:                      ErrService,
	ErrInvalidCredentials:        ErrAuth,
	ErrUserAlreadyConfirmed:      ErrAuth,
	ErrUserNotFound:              ErrAuth,
	ErrUserAlreadyExists:         ErrAuth,
	ErrSync:                      ErrApp,
	ErrUnrecoverableSync:         ErrSync,
	ErrWrongSyncType:             ErrSync,
	ErrBadFlexibleSyncQuery:      ErrSync,
}
