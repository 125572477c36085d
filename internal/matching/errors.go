package matching

import (
	"errors"
	"fmt"
)

// Op names a controller operation.
type Op string

const (
	OpLoad    Op = "load"
	OpRun     Op = "run_matching"
	OpRefresh Op = "refresh"
)

// Kind classifies a failed operation.
type Kind string

const (
	// KindValidation is a local rejection; nothing was sent.
	KindValidation Kind = "validation"
	// KindTransport is a network level failure.
	KindTransport Kind = "transport"
	// KindServer is a non-2xx response from the service.
	KindServer Kind = "server"
	// KindMalformed is a 2xx response whose body is not a JSON object.
	KindMalformed Kind = "malformed"
)

var (
	ErrBusy             = errors.New("another match operation is in progress")
	ErrNothingToRefresh = errors.New("there are no matches to refresh")
	ErrNoNextPage       = errors.New("already on the last page")
	ErrNoPreviousPage   = errors.New("already on the first page")
	// ErrSuperseded is returned when the view was discarded while the call was in flight.
	ErrSuperseded = errors.New("response dropped: view was discarded")
	// ErrMalformedResponse is wrapped by transports when a body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

var fallbackMessages = map[Op]string{
	OpLoad:    "Failed to load matches.",
	OpRun:     "Failed to run matching. Please ensure you have added skills to your profile.",
	OpRefresh: "Failed to refresh results.",
}

// FallbackMessage is the user facing text used when a failure carries no better message.
func FallbackMessage(op Op) string {
	if msg, ok := fallbackMessages[op]; ok {
		return msg
	}

	return fmt.Sprintf("Failed to %s.", op)
}

// OpError is the normalized failure of a controller operation. Error returns Message
// unchanged so it can be shown to the user as is.
type OpError struct {
	Op      Op
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return e.Message
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func rejected(op Op, err error) *OpError {
	return &OpError{
		Op:      op,
		Kind:    KindValidation,
		Message: err.Error(),
		Err:     err,
	}
}

// IsRejection reports whether err is a local rejection that never reached the network.
func IsRejection(err error) bool {
	var opErr *OpError
	return errors.As(err, &opErr) && opErr.Kind == KindValidation
}
