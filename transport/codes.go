package transport

import "strconv"

// ErrorCode is the status reported to an Observer when a connection
// closes. Values below 4000 are standard websocket close codes. The
// 4000-4999 range is the private range the server uses for application
// errors raised after the handshake. 4400 and up are local failures.
type ErrorCode int

const (
	CodeOK                  ErrorCode = 1000
	CodeGoingAway           ErrorCode = 1001
	CodeProtocolError       ErrorCode = 1002
	CodeUnsupportedData     ErrorCode = 1003
	CodeReserved            ErrorCode = 1004
	CodeNoStatusReceived    ErrorCode = 1005
	CodeAbnormalClosure     ErrorCode = 1006
	CodeInvalidPayloadData  ErrorCode = 1007
	CodePolicyViolation     ErrorCode = 1008
	CodeMessageTooBig       ErrorCode = 1009
	CodeInvalidExtension    ErrorCode = 1010
	CodeInternalServerError ErrorCode = 1011
	CodeTLSHandshakeFailed  ErrorCode = 1015

	CodeUnauthorized     ErrorCode = 4001
	CodeForbidden        ErrorCode = 4002
	CodeMovedPermanently ErrorCode = 4003

	CodeResolveFailed    ErrorCode = 4400
	CodeConnectionFailed ErrorCode = 4401
	CodeReadError        ErrorCode = 4402
	CodeWriteError       ErrorCode = 4403
	CodeRetryError       ErrorCode = 4404
	CodeFatalError       ErrorCode = 4405
)

var codeNames = map[ErrorCode]string{
	CodeOK:                  "Ok",
	CodeGoingAway:           "GoingAway",
	CodeProtocolError:       "ProtocolError",
	CodeUnsupportedData:     "UnsupportedData",
	CodeReserved:            "Reserved",
	CodeNoStatusReceived:    "NoStatusReceived",
	CodeAbnormalClosure:     "AbnormalClosure",
	CodeInvalidPayloadData:  "InvalidPayloadData",
	CodePolicyViolation:     "PolicyViolation",
	CodeMessageTooBig:       "MessageTooBig",
	CodeInvalidExtension:    "InvalidExtension",
	CodeInternalServerError: "InternalServerError",
	CodeTLSHandshakeFailed:  "TlsHandshakeFailed",
	CodeUnauthorized:        "Unauthorized",
	CodeForbidden:           "Forbidden",
	CodeMovedPermanently:    "MovedPermanently",
	CodeResolveFailed:       "ResolveFailed",
	CodeConnectionFailed:    "ConnectionFailed",
	CodeReadError:           "ReadError",
	CodeWriteError:          "WriteError",
	CodeRetryError:          "RetryError",
	CodeFatalError:          "FatalError",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return "ErrorCode(" + strconv.Itoa(int(c)) + ")"
}

// Known reports whether c is one of the named codes.
func (c ErrorCode) Known() bool {
	_, ok := codeNames[c]
	return ok
}

// closeCode maps a close status received from the peer. Unknown codes,
// including a missing status, are reported as CodeOK.
func closeCode(status int) ErrorCode {
	code := ErrorCode(status)
	if !code.Known() {
		return CodeOK
	}

	return code
}
