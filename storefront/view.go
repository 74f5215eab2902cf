package storefront

import (
	"errors"

	"go.uber.org/zap"
)

// ViewState is what a panel currently shows.
type ViewState string

const (
	StateLoading  ViewState = "loading"
	StateReady    ViewState = "ready"
	StateError    ViewState = "error"
	StateInvalid  ViewState = "invalid"
	StateEmpty    ViewState = "empty"
	StateRedirect ViewState = "redirect"
)

// RetryLabel is the action offered on an error panel.
const RetryLabel = "Try Again"

// GenericErrorMessage is shown when the server gave no usable message.
const GenericErrorMessage = "Something went wrong. Please try again."

// Status is the common part of every panel view-model.
type Status struct {
	State ViewState `json:"state"`
	// Banner is the message shown above the panel, if any.
	Banner string `json:"banner,omitempty"`
	// Action labels the retry button on error panels.
	Action string `json:"action,omitempty"`
	// RedirectTo is set with StateRedirect.
	RedirectTo string `json:"redirectTo,omitempty"`
	// Fields holds inline messages keyed by field name.
	Fields map[string]string `json:"fields,omitempty"`
}

func ready() Status {
	return Status{State: StateReady}
}

// statusFor maps a failed call to what the panel shows. original is the
// page path to come back to after login; emptyMessage is shown when
// nothing matched.
func statusFor(err error, original, emptyMessage string, logger *zap.Logger) Status {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = &APIError{Kind: KindNetwork, Err: err}
	}
	logger.Warn("panel load failed",
		zap.String("page", original),
		zap.String("kind", string(apiErr.Kind)),
		zap.Error(err))

	switch apiErr.Kind {
	case KindUnauthorized:
		return Status{State: StateRedirect, RedirectTo: LoginRedirect(original)}
	case KindNotFound:
		return Status{State: StateEmpty, Banner: emptyMessage}
	case KindValidation:
		return Status{State: StateInvalid, Banner: messageOr(apiErr.Message, "Please correct the highlighted fields"), Fields: apiErr.Fields}
	}
	return Status{State: StateError, Banner: messageOr(apiErr.Message, GenericErrorMessage), Action: RetryLabel}
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
