package errors

import (
	"net/http"
	"strings"
)

// AppCategory classifies errors reported by the app services layer.
type AppCategory int

const (
	AppCategoryUnknown AppCategory = iota
	// AppCategoryCustom is a transport level failure raised on the client,
	// such as an I/O error or an interrupted request.
	AppCategoryCustom
	// AppCategoryHTTP carries the HTTP status as its code.
	AppCategoryHTTP
	// AppCategoryJSON is a malformed or unexpected response body.
	AppCategoryJSON
	// AppCategoryClient is a client side state error such as a stale user.
	AppCategoryClient
	// AppCategoryService is a named error code returned by the server.
	AppCategoryService
)

func (c AppCategory) String() string {
	switch c {
	case AppCategoryCustom:
		return "Custom"
	case AppCategoryHTTP:
		return "Http"
	case AppCategoryJSON:
		return "Json"
	case AppCategoryClient:
		return "Client"
	case AppCategoryService:
		return "Service"
	default:
		return "Unknown"
	}
}

// SyncCategory classifies errors reported by the sync protocol.
type SyncCategory int

const (
	SyncCategoryUnknown SyncCategory = iota
	SyncCategoryClient
	SyncCategoryConnection
	SyncCategorySession
	SyncCategorySystem
)

func (c SyncCategory) String() string {
	switch c {
	case SyncCategoryClient:
		return "Client"
	case SyncCategoryConnection:
		return "Connection"
	case SyncCategorySession:
		return "Session"
	case SyncCategorySystem:
		return "System"
	default:
		return "Unknown"
	}
}

// Custom transport codes.
const (
	CustomIO          = 1000
	CustomInterrupted = 1001
)

var customCodes = map[int]string{
	CustomIO:          "IO",
	CustomInterrupted: "Interrupted",
}

// Client codes.
const (
	ClientUserNotFound       = 1
	ClientUserNotLoggedIn    = 2
	ClientAppDeallocated     = 3
	ClientRedirectError      = 4
	ClientTooManyRedirects   = 5
	ClientUserAlreadyNamed   = 6
	ClientCredentialsInvalid = 7
)

var clientCodes = map[int]string{
	ClientUserNotFound:       "UserNotFound",
	ClientUserNotLoggedIn:    "UserNotLoggedIn",
	ClientAppDeallocated:     "AppDeallocated",
	ClientRedirectError:      "RedirectError",
	ClientTooManyRedirects:   "TooManyRedirects",
	ClientUserAlreadyNamed:   "UserAlreadyNamed",
	ClientCredentialsInvalid: "CredentialsInvalid",
}

// JSON codes.
const (
	JSONBadToken       = 1
	JSONMalformedJSON  = 2
	JSONMissingJSONKey = 3
	JSONBadBSONParse   = 4
)

var jsonCodes = map[int]string{
	JSONBadToken:       "BadToken",
	JSONMalformedJSON:  "MalformedJson",
	JSONMissingJSONKey: "MissingJsonKey",
	JSONBadBSONParse:   "BadBsonParse",
}

// Service codes, as named by the server in the error_code field.
const (
	ServiceUnknown                      = -1
	ServiceMissingAuthReq               = 1
	ServiceInvalidSession               = 2
	ServiceUserAppDomainMismatch        = 3
	ServiceDomainNotAllowed             = 4
	ServiceReadSizeLimitExceeded        = 5
	ServiceInvalidParameter             = 6
	ServiceMissingParameter             = 7
	ServiceTwilioError                  = 8
	ServiceGCMError                     = 9
	ServiceHTTPError                    = 10
	ServiceAWSError                     = 11
	ServiceMongoDBError                 = 12
	ServiceArgumentsNotAllowed          = 13
	ServiceFunctionExecutionError       = 14
	ServiceNoMatchingRule               = 15
	ServiceInternalServerError          = 16
	ServiceAuthProviderNotFound         = 17
	ServiceAuthProviderAlreadyExists    = 18
	ServiceServiceNotFound              = 19
	ServiceServiceTypeNotFound          = 20
	ServiceServiceAlreadyExists         = 21
	ServiceServiceCommandNotFound       = 22
	ServiceValueNotFound                = 23
	ServiceValueAlreadyExists           = 24
	ServiceValueDuplicateName           = 25
	ServiceFunctionNotFound             = 26
	ServiceFunctionAlreadyExists        = 27
	ServiceFunctionDuplicateName        = 28
	ServiceFunctionSyntaxError          = 29
	ServiceFunctionInvalid              = 30
	ServiceIncomingWebhookNotFound      = 31
	ServiceIncomingWebhookAlreadyExists = 32
	ServiceIncomingWebhookDuplicateName = 33
	ServiceRuleNotFound                 = 34
	ServiceAPIKeyNotFound               = 35
	ServiceRuleAlreadyExists            = 36
	ServiceRuleDuplicateName            = 37
	ServiceAuthProviderDuplicateName    = 38
	ServiceRestrictedHost               = 39
	ServiceAPIKeyAlreadyExists          = 40
	ServiceIncomingWebhookAuthFailed    = 41
	ServiceExecutionTimeLimitExceeded   = 42
	ServiceNotCallable                  = 43
	ServiceUserAlreadyConfirmed         = 44
	ServiceUserNotFound                 = 45
	ServiceUserDisabled                 = 46
	ServiceAuthError                    = 47
	ServiceBadRequest                   = 48
	ServiceAccountNameInUse             = 49
	ServiceInvalidPassword              = 50
	ServiceSchemaValidationFailedWrite  = 51
	ServiceUserpassTokenInvalid         = 52
	ServiceMaintenanceInProgress        = 53
)

var serviceCodes = map[int]string{
	ServiceUnknown:                      "Unknown",
	ServiceMissingAuthReq:               "MissingAuthReq",
	ServiceInvalidSession:               "InvalidSession",
	ServiceUserAppDomainMismatch:        "UserAppDomainMismatch",
	ServiceDomainNotAllowed:             "DomainNotAllowed",
	ServiceReadSizeLimitExceeded:        "ReadSizeLimitExceeded",
	ServiceInvalidParameter:             "InvalidParameter",
	ServiceMissingParameter:             "MissingParameter",
	ServiceTwilioError:                  "TwilioError",
	ServiceGCMError:                     "GCMError",
	ServiceHTTPError:                    "HTTPError",
	ServiceAWSError:                     "AWSError",
	ServiceMongoDBError:                 "MongoDBError",
	ServiceArgumentsNotAllowed:          "ArgumentsNotAllowed",
	ServiceFunctionExecutionError:       "FunctionExecutionError",
	ServiceNoMatchingRule:               "NoMatchingRule",
	ServiceInternalServerError:          "InternalServerError",
	ServiceAuthProviderNotFound:         "AuthProviderNotFound",
	ServiceAuthProviderAlreadyExists:    "AuthProviderAlreadyExists",
	ServiceServiceNotFound:              "ServiceNotFound",
	ServiceServiceTypeNotFound:          "ServiceTypeNotFound",
	ServiceServiceAlreadyExists:         "ServiceAlreadyExists",
	ServiceServiceCommandNotFound:       "ServiceCommandNotFound",
	ServiceValueNotFound:                "ValueNotFound",
	ServiceValueAlreadyExists:           "ValueAlreadyExists",
	ServiceValueDuplicateName:           "ValueDuplicateName",
	ServiceFunctionNotFound:             "FunctionNotFound",
	ServiceFunctionAlreadyExists:        "FunctionAlreadyExists",
	ServiceFunctionDuplicateName:        "FunctionDuplicateName",
	ServiceFunctionSyntaxError:          "FunctionSyntaxError",
	ServiceFunctionInvalid:              "FunctionInvalid",
	ServiceIncomingWebhookNotFound:      "IncomingWebhookNotFound",
	ServiceIncomingWebhookAlreadyExists: "IncomingWebhookAlreadyExists",
	ServiceIncomingWebhookDuplicateName: "IncomingWebhookDuplicateName",
	ServiceRuleNotFound:                 "RuleNotFound",
	ServiceAPIKeyNotFound:               "APIKeyNotFound",
	ServiceRuleAlreadyExists:            "RuleAlreadyExists",
	ServiceRuleDuplicateName:            "RuleDuplicateName",
	ServiceAuthProviderDuplicateName:    "AuthProviderDuplicateName",
	ServiceRestrictedHost:               "RestrictedHost",
	ServiceAPIKeyAlreadyExists:          "APIKeyAlreadyExists",
	ServiceIncomingWebhookAuthFailed:    "IncomingWebhookAuthFailed",
	ServiceExecutionTimeLimitExceeded:   "ExecutionTimeLimitExceeded",
	ServiceNotCallable:                  "NotCallable",
	ServiceUserAlreadyConfirmed:         "UserAlreadyConfirmed",
	ServiceUserNotFound:                 "UserNotFound",
	ServiceUserDisabled:                 "UserDisabled",
	ServiceAuthError:                    "AuthError",
	ServiceBadRequest:                   "BadRequest",
	ServiceAccountNameInUse:             "AccountNameInUse",
	ServiceInvalidPassword:              "InvalidPassword",
	ServiceSchemaValidationFailedWrite:  "SchemaValidationFailedWrite",
	ServiceUserpassTokenInvalid:         "UserpassTokenInvalid",
	ServiceMaintenanceInProgress:        "MaintenanceInProgress",
}

// ServiceCodeByName resolves the server's error_code string. The server
// spells API keys as "ApiKey...", so lookups are case-insensitive.
func ServiceCodeByName(name string) int {
	if code, ok := serviceCodesByName[strings.ToLower(name)]; ok {
		return code
	}

	return ServiceUnknown
}

var serviceCodesByName = func() map[string]int {
	m := make(map[string]int, len(serviceCodes))
	for code, name := range serviceCodes {
		m[strings.ToLower(name)] = code
	}

	return m
}()

// Sync connection codes.
const (
	ConnectionClosed                   = 100
	ConnectionOtherError               = 101
	ConnectionUnknownMessage           = 102
	ConnectionBadSyntax                = 103
	ConnectionLimitsExceeded           = 104
	ConnectionWrongProtocolVersion     = 105
	ConnectionBadSessionIdent          = 106
	ConnectionReuseOfSessionIdent      = 107
	ConnectionBoundInOtherSession      = 108
	ConnectionBadMessageOrder          = 109
	ConnectionBadDecompression         = 110
	ConnectionBadChangesetHeaderSyntax = 111
	ConnectionBadChangesetSize         = 112
	ConnectionSwitchToFlxSync          = 113
	ConnectionSwitchToPBS              = 114
)

var connectionCodes = map[int]string{
	ConnectionClosed:                   "ConnectionClosed",
	ConnectionOtherError:               "OtherError",
	ConnectionUnknownMessage:           "UnknownMessage",
	ConnectionBadSyntax:                "BadSyntax",
	ConnectionLimitsExceeded:           "LimitsExceeded",
	ConnectionWrongProtocolVersion:     "WrongProtocolVersion",
	ConnectionBadSessionIdent:          "BadSessionIdent",
	ConnectionReuseOfSessionIdent:      "ReuseOfSessionIdent",
	ConnectionBoundInOtherSession:      "BoundInOtherSession",
	ConnectionBadMessageOrder:          "BadMessageOrder",
	ConnectionBadDecompression:         "BadDecompression",
	ConnectionBadChangesetHeaderSyntax: "BadChangesetHeaderSyntax",
	ConnectionBadChangesetSize:         "BadChangesetSize",
	ConnectionSwitchToFlxSync:          "SwitchToFlxSync",
	ConnectionSwitchToPBS:              "SwitchToPbs",
}

// Sync session codes.
const (
	SessionClosed                   = 200
	SessionOtherError               = 201
	SessionTokenExpired             = 202
	SessionBadAuthentication        = 203
	SessionIllegalRealmPath         = 204
	SessionNoSuchRealm              = 205
	SessionPermissionDenied         = 206
	SessionBadServerFileIdent       = 207
	SessionBadClientFileIdent       = 208
	SessionBadServerVersion         = 209
	SessionBadClientVersion         = 210
	SessionDivergingHistories       = 211
	SessionBadChangeset             = 212
	SessionPartialSyncDisabled      = 214
	SessionUnsupportedFeature       = 215
	SessionBadOriginFileIdent       = 216
	SessionBadClientFile            = 217
	SessionServerFileDeleted        = 218
	SessionClientFileBlacklisted    = 219
	SessionUserBlacklisted          = 220
	SessionTransactBeforeUpload     = 221
	SessionClientFileExpired        = 222
	SessionUserMismatch             = 223
	SessionTooManySessions          = 224
	SessionInvalidSchemaChange      = 225
	SessionBadQuery                 = 226
	SessionObjectAlreadyExists      = 227
	SessionServerPermissionsChanged = 228
	SessionInitialSyncNotCompleted  = 229
	SessionWriteNotAllowed          = 230
	SessionCompensatingWrite        = 231
	SessionMigrateToFlx             = 232
	SessionBadProgress              = 233
	SessionRevertToPBS              = 234
	SessionBadSchemaVersion         = 235
	SessionSchemaVersionChanged     = 236
)

var sessionCodes = map[int]string{
	SessionClosed:                   "SessionClosed",
	SessionOtherError:               "OtherSessionError",
	SessionTokenExpired:             "TokenExpired",
	SessionBadAuthentication:        "BadAuthentication",
	SessionIllegalRealmPath:         "IllegalRealmPath",
	SessionNoSuchRealm:              "NoSuchRealm",
	SessionPermissionDenied:         "PermissionDenied",
	SessionBadServerFileIdent:       "BadServerFileIdent",
	SessionBadClientFileIdent:       "BadClientFileIdent",
	SessionBadServerVersion:         "BadServerVersion",
	SessionBadClientVersion:         "BadClientVersion",
	SessionDivergingHistories:       "DivergingHistories",
	SessionBadChangeset:             "BadChangeset",
	SessionPartialSyncDisabled:      "PartialSyncDisabled",
	SessionUnsupportedFeature:       "UnsupportedSessionFeature",
	SessionBadOriginFileIdent:       "BadOriginFileIdent",
	SessionBadClientFile:            "BadClientFile",
	SessionServerFileDeleted:        "ServerFileDeleted",
	SessionClientFileBlacklisted:    "ClientFileBlacklisted",
	SessionUserBlacklisted:          "UserBlacklisted",
	SessionTransactBeforeUpload:     "TransactBeforeUpload",
	SessionClientFileExpired:        "ClientFileExpired",
	SessionUserMismatch:             "UserMismatch",
	SessionTooManySessions:          "TooManySessions",
	SessionInvalidSchemaChange:      "InvalidSchemaChange",
	SessionBadQuery:                 "BadQuery",
	SessionObjectAlreadyExists:      "ObjectAlreadyExists",
	SessionServerPermissionsChanged: "ServerPermissionsChanged",
	SessionInitialSyncNotCompleted:  "InitialSyncNotCompleted",
	SessionWriteNotAllowed:          "WriteNotAllowed",
	SessionCompensatingWrite:        "CompensatingWrite",
	SessionMigrateToFlx:             "MigrateToFlexibleSync",
	SessionBadProgress:              "BadProgress",
	SessionRevertToPBS:              "RevertToPartitionBasedSync",
	SessionBadSchemaVersion:         "BadSchemaVersion",
	SessionSchemaVersionChanged:     "SchemaVersionChanged",
}

// Sync client codes.
const (
	SyncClientConnectionClosed       = 100
	SyncClientUnknownMessage         = 101
	SyncClientBadSyntax              = 102
	SyncClientLimitsExceeded         = 103
	SyncClientBadSessionIdent        = 104
	SyncClientBadMessageOrder        = 105
	SyncClientBadClientFileIdent     = 106
	SyncClientBadProgress            = 107
	SyncClientBadChangesetHeader     = 108
	SyncClientBadChangesetSize       = 109
	SyncClientBadOriginFileIdent     = 110
	SyncClientBadServerVersion       = 111
	SyncClientBadChangeset           = 112
	SyncClientBadRequestIdent        = 113
	SyncClientBadErrorCode           = 114
	SyncClientBadCompression         = 115
	SyncClientBadClientVersion       = 116
	SyncClientSSLServerCertRejected  = 117
	SyncClientPongTimeout            = 118
	SyncClientClientResetFailed      = 119
	SyncClientAutoClientResetFailure = 132
)

var syncClientCodes = map[int]string{
	SyncClientConnectionClosed:       "ConnectionClosed",
	SyncClientUnknownMessage:         "UnknownMessage",
	SyncClientBadSyntax:              "BadSyntax",
	SyncClientLimitsExceeded:         "LimitsExceeded",
	SyncClientBadSessionIdent:        "BadSessionIdent",
	SyncClientBadMessageOrder:        "BadMessageOrder",
	SyncClientBadClientFileIdent:     "BadClientFileIdent",
	SyncClientBadProgress:            "BadProgress",
	SyncClientBadChangesetHeader:     "BadChangesetHeaderSyntax",
	SyncClientBadChangesetSize:       "BadChangesetSize",
	SyncClientBadOriginFileIdent:     "BadOriginFileIdent",
	SyncClientBadServerVersion:       "BadServerVersion",
	SyncClientBadChangeset:           "BadChangeset",
	SyncClientBadRequestIdent:        "BadRequestIdent",
	SyncClientBadErrorCode:           "BadErrorCode",
	SyncClientBadCompression:         "BadCompression",
	SyncClientBadClientVersion:       "BadClientVersion",
	SyncClientSSLServerCertRejected:  "SSLServerCertRejected",
	SyncClientPongTimeout:            "PongTimeout",
	SyncClientClientResetFailed:      "ClientResetFailed",
	SyncClientAutoClientResetFailure: "AutoClientResetFailure",
}

// AppCodeName returns the symbolic name of code within category, or ""
// when the code is not in the table.
func AppCodeName(category AppCategory, code int) string {
	switch category {
	case AppCategoryCustom:
		return customCodes[code]
	case AppCategoryClient:
		return clientCodes[code]
	case AppCategoryJSON:
		return jsonCodes[code]
	case AppCategoryService:
		return serviceCodes[code]
	case AppCategoryHTTP:
		return httpStatusName(code)
	}

	return ""
}

// SyncCodeName returns the symbolic name of code within category, or ""
// when the code is not in the table.
func SyncCodeName(category SyncCategory, code int) string {
	switch category {
	case SyncCategoryClient:
		return syncClientCodes[code]
	case SyncCategoryConnection:
		return connectionCodes[code]
	case SyncCategorySession:
		return sessionCodes[code]
	}

	return ""
}

func httpStatusName(code int) string {
	return strings.ReplaceAll(http.StatusText(code), " ", "")
}
