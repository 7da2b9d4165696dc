// Package envelope maps failures to the stable error shape clients see:
// a code, a safe message and an HTTP status. The same shape is carried
// over gRPC as a status with an ErrorInfo detail.
package envelope

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Domain is reported in gRPC ErrorInfo details.
const Domain = "chatandpay.identity"

const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

const (
	defaultClientMessage   = "Invalid request."
	defaultInternalMessage = "Internal server error."
)

// Envelope is the client-facing error.
type Envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// New builds an envelope. Transports use it for failures that never reach
// the service, such as missing credentials or throttling.
func New(code, message string, status int) *Envelope {
	return &Envelope{Code: code, Message: message, Status: status}
}

func Unauthorized(message string) *Envelope {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *Envelope {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func TooManyRequests(message string) *Envelope {
	return New(CodeTooManyRequests, message, http.StatusTooManyRequests)
}

func (e *Envelope) Error() string {
	return e.Code + ": " + e.Message
}

// FromError maps err to exactly one envelope. Validation and not-found
// failures become 400 with their own message. An envelope already in the
// chain is returned as is, with a missing status read as 500. Everything
// else becomes a generic 500 that does not reveal the cause.
func FromError(err error) *Envelope {
	if err == nil {
		return nil
	}

	var env *Envelope
	if errors.As(err, &env) {
		if env.Status == 0 {
			return New(env.Code, env.Message, http.StatusInternalServerError)
		}
		return env
	}

	var ce *common.Error
	if errors.As(err, &ce) {
		switch ce.Kind {
		case common.KindValidation, common.KindNotFound:
			msg := ce.Message
			if msg == "" {
				msg = defaultClientMessage
			}
			return New(CodeBadRequest, msg, http.StatusBadRequest)
		}
	}

	return New(CodeInternal, defaultInternalMessage, http.StatusInternalServerError)
}

// IsServerFault reports whether the envelope describes a 5xx failure.
func (e *Envelope) IsServerFault() bool {
	return e.Status >= http.StatusInternalServerError
}

// GRPCCode translates the status class.
func (e *Envelope) GRPCCode() codes.Code {
	switch e.Status {
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	}
	if e.Status >= 400 && e.Status < 500 {
		return codes.InvalidArgument
	}
	return codes.Internal
}

// GRPCStatus lets status.FromError and grpc handlers recover the envelope.
func (e *Envelope) GRPCStatus() *status.Status {
	st := status.New(e.GRPCCode(), e.Message)
	withDetails, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason: e.Code,
		Domain: Domain,
	})
	if err != nil {
		return st
	}
	return withDetails
}

// FromStatus recovers an envelope from a gRPC status produced by GRPCStatus.
// ok is false when the status carries no ErrorInfo from this domain.
func FromStatus(st *status.Status) (*Envelope, bool) {
	for _, d := range st.Details() {
		info, isInfo := d.(*errdetails.ErrorInfo)
		if !isInfo || info.GetDomain() != Domain {
			continue
		}
		return New(info.GetReason(), st.Message(), httpStatus(st.Code())), true
	}
	return nil, false
}

func httpStatus(c codes.Code) int {
	switch c {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
