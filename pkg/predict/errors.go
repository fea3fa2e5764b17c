package predict

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// FallbackRejection is used when the service declines without an error
	// field.
	FallbackRejection = "Unknown error"
	// MessageTransportFailure is shown when no usable response was obtained.
	MessageTransportFailure = "Error connecting to backend. Please try again."
	// MessageRejectionPrefix precedes the service supplied reason.
	MessageRejectionPrefix = "Prediction failed: "
)

// RejectionError reports a response that did not carry a prediction.
type RejectionError struct {
	Status  int
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("predict: service rejected request (status %d): %s", e.Status, e.Message)
}

// TransportError reports that no usable response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("predict: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UserMessage maps a Predict error onto the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		msg := strings.TrimSpace(rejection.Message)
		if msg == "" {
			msg = FallbackRejection
		}
		return MessageRejectionPrefix + msg
	}
	return MessageTransportFailure
}

// IsRejection reports whether err is a service rejection.
func IsRejection(err error) bool {
	var rejection *RejectionError
	return errors.As(err, &rejection)
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}
