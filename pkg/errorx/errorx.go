package errorx

import (
	"fmt"
)

// GENERAL ERROR:

// GeneralError - General App Error.
type GeneralError struct {
	message string
	err     error
}

// NewGeneralError - GeneralError constructor.
func NewGeneralError(msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewGeneralErrorWrapper - GeneralError constructor for wrapper of another error.
func NewGeneralErrorWrapper(err error, msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ge *GeneralError) Error() string {
	if ge.err != nil {
		return fmt.Errorf("%s # Error wrap: %w", ge.message, ge.err).Error()
	}

	return ge.message
}

// VALIDATION ERROR

// ValidationError - malformed or missing required input, surfaced as a client error.
type ValidationError struct {
	message string
}

// NewValidationError - ValidationError constructor.
func NewValidationError(msg string, args ...any) *ValidationError {
	return &ValidationError{message: fmt.Sprintf(msg, args...)}
}

func (ve *ValidationError) Error() string {
	return ve.message
}

// PUBLISH ERROR

// PublishError - broker publish call failed. Carries the backend detail string.
type PublishError struct {
	message string
	err     error
}

// NewPublishError - PublishError constructor.
func NewPublishError(msg string, args ...any) *PublishError {
	return &PublishError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewPublishErrorWrapper - PublishError constructor for wrapper of another error.
func NewPublishErrorWrapper(err error, msg string, args ...any) *PublishError {
	return &PublishError{message: fmt.Sprintf(msg, args...), err: err}
}

func (pe *PublishError) Error() string {
	if pe.err != nil {
		return fmt.Errorf("%s: %w", pe.message, pe.err).Error()
	}

	return pe.message
}

func (pe *PublishError) Unwrap() error {
	return pe.err
}

// STORAGE ERROR

// StorageError - blob store upload or signing failed.
type StorageError struct {
	message string
	err     error
}

// NewStorageError - StorageError constructor.
func NewStorageError(msg string, args ...any) *StorageError {
	return &StorageError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewStorageErrorWrapper - StorageError constructor for wrapper of another error.
func NewStorageErrorWrapper(err error, msg string, args ...any) *StorageError {
	return &StorageError{message: fmt.Sprintf(msg, args...), err: err}
}

func (se *StorageError) Error() string {
	if se.err != nil {
		return fmt.Errorf("%s: %w", se.message, se.err).Error()
	}

	return se.message
}

func (se *StorageError) Unwrap() error {
	return se.err
}

// DECODE ERROR

// DecodeError - payload not valid under the expected encoding.
// Surfaced as a Nack for subscription-sourced messages, 500 for webhook-sourced ones.
type DecodeError struct {
	message string
	err     error
}

// NewDecodeError - DecodeError constructor.
func NewDecodeError(msg string, args ...any) *DecodeError {
	return &DecodeError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewDecodeErrorWrapper - DecodeError constructor for wrapper of another error.
func NewDecodeErrorWrapper(err error, msg string, args ...any) *DecodeError {
	return &DecodeError{message: fmt.Sprintf(msg, args...), err: err}
}

func (de *DecodeError) Error() string {
	if de.err != nil {
		return fmt.Errorf("%s: %w", de.message, de.err).Error()
	}

	return de.message
}

// SUBSCRIPTION SETUP ERROR

// SubscriptionSetupError - startup-time subscription binding failure.
// Logged; the process continues in degraded mode without live delivery.
type SubscriptionSetupError struct {
	message string
	err     error
}

// NewSubscriptionSetupError - SubscriptionSetupError constructor.
func NewSubscriptionSetupError(msg string, args ...any) *SubscriptionSetupError {
	return &SubscriptionSetupError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewSubscriptionSetupErrorWrapper - SubscriptionSetupError constructor for wrapper of another error.
func NewSubscriptionSetupErrorWrapper(err error, msg string, args ...any) *SubscriptionSetupError {
	return &SubscriptionSetupError{message: fmt.Sprintf(msg, args...), err: err}
}

func (se *SubscriptionSetupError) Error() string {
	if se.err != nil {
		return fmt.Errorf("%s: %w", se.message, se.err).Error()
	}

	return se.message
}
