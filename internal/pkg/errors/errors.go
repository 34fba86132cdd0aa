package errors

import (
	stderrors "errors"
	"fmt"
)

var ErrEmptySecret = stderrors.New("secret is empty")

// ConfigurationError is returned when the caller cannot be set up: the secret
// file is missing, unreadable or empty, or a setting is invalid. It is always
// raised before any network activity.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error (%s): %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// TransportError is returned when the request could not be delivered or the
// response could not be read.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return stderrors.As(err, &target)
}

func IsTransport(err error) bool {
	var target *TransportError
	return stderrors.As(err, &target)
}
