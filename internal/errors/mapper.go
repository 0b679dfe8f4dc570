package errors

import (
	"strconv"
	"strings"
)

// AppFailure is an error as reported by the app services layer, before
// it is mapped to a Kind.
type AppFailure struct {
	Category AppCategory
	Code     int
	Message  string
	// LinkToServerLog is only set for service errors.
	LinkToServerLog string
}

// SyncFailure is an error as reported by the sync protocol, before it is
// mapped to a Kind.
type SyncFailure struct {
	Category SyncCategory
	Code     int
	Message  string
	// Fatal marks errors after which the session cannot continue.
	Fatal bool
}

// Error is a mapped failure. Its message follows
// "[Category][CodeName(code)] message.[ Server log entry: link]".
type Error struct {
	Kind          Kind
	Category      string
	Code          int
	CodeName      string
	ServerMessage string
	LogURL        string
	msg           string
}

func (e *Error) Error() string { return e.msg }

// Is matches target against the error's kind and all of its ancestors.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind.Within(k)
}

// NewError builds an Error of the given kind with a preformatted message.
// It is used for errors raised locally that still need to look like mapped
// server errors, such as API key remappings.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, ServerMessage: msg, msg: msg}
}

// MapAppError converts an app services failure into a typed error.
func MapAppError(f AppFailure) *Error {
	codeName := AppCodeName(f.Category, f.Code)
	if codeName == "" {
		codeName = "Unknown"
	}

	return &Error{
		Kind:          appKind(f),
		Category:      f.Category.String(),
		Code:          f.Code,
		CodeName:      codeName,
		ServerMessage: f.Message,
		LogURL:        f.LinkToServerLog,
		msg:           formatMessage(f.Category.String(), codeName, f.Code, f.Message, f.LinkToServerLog),
	}
}

// MapSyncError converts a sync protocol failure into a typed error.
func MapSyncError(f SyncFailure) *Error {
	codeName := SyncCodeName(f.Category, f.Code)
	if codeName == "" && f.Category != SyncCategorySystem {
		codeName = "Unknown"
	}

	return &Error{
		Kind:          syncKind(f),
		Category:      f.Category.String(),
		Code:          f.Code,
		CodeName:      codeName,
		ServerMessage: f.Message,
		msg:           formatMessage(f.Category.String(), codeName, f.Code, f.Message, ""),
	}
}

// formatMessage renders the user visible error text. System errors have
// no reliable code name, so only the number is printed for them.
func formatMessage(category, codeName string, code int, message, link string) string {
	var b strings.Builder

	b.WriteString("[")
	b.WriteString(category)
	b.WriteString("][")

	if codeName == "" {
		b.WriteString(strconv.Itoa(code))
	} else {
		b.WriteString(codeName)
		b.WriteString("(")
		b.WriteString(strconv.Itoa(code))
		b.WriteString(")")
	}

	b.WriteString("]")

	if message != "" {
		b.WriteString(" ")
		b.WriteString(message)

		if !strings.HasSuffix(message, ".") {
			b.WriteString(".")
		}
	}

	if link != "" {
		b.WriteString(" Server log entry: ")
		b.WriteString(link)
	}

	return b.String()
}

func appKind(f AppFailure) Kind {
	switch f.Category {
	case AppCategoryCustom, AppCategoryJSON:
		return ErrConnection
	case AppCategoryHTTP:
		return httpKind(f.Code)
	case AppCategoryClient:
		switch f.Code {
		case ClientUserNotFound:
			return ErrIllegalState
		case ClientUserNotLoggedIn:
			return ErrInvalidCredentials
		case ClientUserAlreadyNamed:
			return ErrCredentialsCannotBeLinked
		default:
			return ErrApp
		}
	case AppCategoryService:
		return serviceKind(f.Code, f.Message)
	default:
		return ErrApp
	}
}

func httpKind(status int) Kind {
	switch {
	case status >= 300 && status <= 399:
		return ErrConnection
	case status == 401:
		return ErrInvalidCredentials
	case status == 408, status == 429, status >= 500 && status <= 599:
		return ErrConnection
	default:
		return ErrService
	}
}

// serviceKind maps named server error codes. Several auth providers
// report bad credentials with a generic code, so the message text is
// inspected as a best-effort upgrade to InvalidCredentials. The sniffed
// phrases are not a stable server contract.
func serviceKind(code int, message string) Kind {
	switch code {
	case ServiceInternalServerError:
		if strings.Contains(message, "linking an anonymous identity is not allowed") ||
			strings.Contains(message, "linking a local-userpass identity is not allowed") {
			return ErrCredentialsCannotBeLinked
		}

		return ErrService
	case ServiceInvalidSession:
		if strings.Contains(message, "a user already exists with the specified provider") {
			return ErrCredentialsCannotBeLinked
		}

		return ErrService
	case ServiceUserDisabled, ServiceAuthError:
		if strings.Contains(message, "invalid API key") ||
			strings.Contains(message, "invalid custom auth token:") {
			return ErrInvalidCredentials
		}

		return ErrAuth
	case ServiceUserNotFound:
		return ErrUserNotFound
	case ServiceAccountNameInUse:
		return ErrUserAlreadyExists
	case ServiceUserAlreadyConfirmed:
		return ErrUserAlreadyConfirmed
	case ServiceInvalidPassword:
		return ErrInvalidCredentials
	case ServiceBadRequest:
		return ErrBadRequest
	case ServiceFunctionNotFound, ServiceExecutionTimeLimitExceeded, ServiceFunctionExecutionError:
		return ErrFunctionExecution
	default:
		return ErrService
	}
}

func syncKind(f SyncFailure) Kind {
	if f.Fatal {
		return ErrUnrecoverableSync
	}

	switch f.Category {
	case SyncCategoryConnection:
		switch f.Code {
		case ConnectionUnknownMessage,
			ConnectionBadSyntax,
			ConnectionWrongProtocolVersion,
			ConnectionBadSessionIdent,
			ConnectionReuseOfSessionIdent,
			ConnectionBoundInOtherSession,
			ConnectionBadMessageOrder,
			ConnectionBadDecompression,
			ConnectionBadChangesetHeaderSyntax,
			ConnectionBadChangesetSize:
			return ErrUnrecoverableSync
		case ConnectionSwitchToFlxSync, ConnectionSwitchToPBS:
			return ErrWrongSyncType
		default:
			return ErrSync
		}
	case SyncCategorySession:
		switch f.Code {
		case SessionBadQuery:
			return ErrBadFlexibleSyncQuery
		case SessionPermissionDenied:
			return ErrUnrecoverableSync
		default:
			return ErrSync
		}
	default:
		return ErrSync
	}
}
