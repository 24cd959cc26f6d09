package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidBody rejects a send before any side effect.
	ErrInvalidBody = fmt.Errorf("message body is empty or too long")
	// ErrStoreUnavailable means the durable medium cannot be reached.
	// Fatal to the send: a message is never fanned out unrecorded.
	ErrStoreUnavailable = fmt.Errorf("message store unavailable")
	// ErrConnectionGone means the target connection is no longer registered.
	ErrConnectionGone = fmt.Errorf("connection gone")
	// ErrUnknownConnection means an operation referenced a connection
	// that was never registered.
	ErrUnknownConnection = fmt.Errorf("unknown connection")
	// ErrMessageNotFound means a status update referenced an absent message.
	ErrMessageNotFound = fmt.Errorf("message not found")
	// ErrInvalidTransition means a status update left the legal
	// pending -> {delivered, failed} machine.
	ErrInvalidTransition = fmt.Errorf("illegal delivery status transition")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
)

// HTTPStatus maps core errors to HTTP status codes at the transport
// boundary. Unknown errors stay opaque as 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, ErrMessageNotFound), errors.Is(err, ErrUnknownConnection):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
