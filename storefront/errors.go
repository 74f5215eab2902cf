package storefront

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed storefront call.
type ErrorKind string

const (
	// KindNetwork covers transport failures and non-2xx responses not
	// listed below. The panel shows an error state with a retry action.
	KindNetwork ErrorKind = "network"
	// KindValidation means the request was rejected before or by the
	// server because of field errors.
	KindValidation ErrorKind = "validation"
	// KindUnauthorized means the session is missing or expired.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindNotFound means nothing matched; shown as an empty state.
	KindNotFound ErrorKind = "notfound"
)

// ErrNotReady is returned by CheckoutPage.PlaceOrder while a load is
// outstanding, has failed, or nothing is selected.
var ErrNotReady = errors.New("checkout is not ready")

// APIError is the error returned by every Client call.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil && e.Status == 0:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// KindOf returns the kind of err, treating foreign errors as network
// failures.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNetwork
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusNotFound:
		return KindNotFound
	}
	return KindNetwork
}
