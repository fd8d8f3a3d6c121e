package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Configuration errors.
var (
	ErrInvalidConfig     = errors.New("invalid identity provider configuration")
	ErrConflictingConfig = errors.New("identity provider already configured with different options")
	ErrNotConfigured     = errors.New("identity provider not configured")
)

// Session errors.
var (
	ErrNoSession            = errors.New("no authenticated session")
	ErrUnreachable          = errors.New("identity provider unreachable")
	ErrRejected             = errors.New("identity provider rejected the request")
	ErrConfirmationRequired = errors.New("account confirmation required")
	ErrChallengeUnsupported = errors.New("sign-in challenge not supported")
)

// RejectedError is a refusal returned by the identity provider's API. Message is
// the provider's own text and is suitable for showing to the visitor.
type RejectedError struct {
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// classify maps an SDK error onto the package taxonomy. API errors are refusals;
// anything else never got an answer from the provider.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "UserNotConfirmedException":
			return fmt.Errorf("%s: %w", op, ErrConfirmationRequired)
		}
		return fmt.Errorf("%s: %w", op, &RejectedError{
			Code:    apiErr.ErrorCode(),
			Message: apiErr.ErrorMessage(),
		})
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnreachable, err)
}

// IsRejectedCode reports whether err is a provider refusal with the given code.
func IsRejectedCode(err error, code string) bool {
	var rej *RejectedError
	return errors.As(err, &rej) && rej.Code == code
}
