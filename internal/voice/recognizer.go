// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// RecognizerError represents a speech-capture failure.
type RecognizerError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *RecognizerError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RecognizerError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes recognizer errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnsupported
	ErrTypePermissionDenied
	ErrTypeNoSpeech
	ErrTypeNetwork
)

// Sentinel errors for easy checking.
var (
	ErrUnsupported      = &RecognizerError{Type: ErrTypeUnsupported, Message: "voice input is not supported in this environment"}
	ErrPermissionDenied = &RecognizerError{Type: ErrTypePermissionDenied, Message: "microphone access denied"}
	ErrNoSpeech         = &RecognizerError{Type: ErrTypeNoSpeech, Message: "no speech detected"}
	ErrNetwork          = &RecognizerError{Type: ErrTypeNetwork, Message: "speech recognition network error"}
)

// IsUnsupported checks if an error means voice capture is unavailable
// rather than failed.
func IsUnsupported(err error) bool {
	var recErr *RecognizerError
	if errors.As(err, &recErr) {
		return recErr.Type == ErrTypeUnsupported
	}
	return errors.Is(err, ErrUnsupported)
}

// =============================================================================
// RECOGNIZER INTERFACE
// =============================================================================

// Recognizer captures speech and emits recognized text fragments.
//
// Start begins a capture session; fragments arrive on Fragments and
// failures on Errors until the session ends. Stop ends the session and is
// idempotent: stopping a recognizer that is not listening is a no-op.
// Both channels are owned by the recognizer and closed when the session
// ends.
type Recognizer interface {
	Start() error
	Stop()
	Fragments() <-chan string
	Errors() <-chan error
	Listening() bool
}

// =============================================================================
// UNSUPPORTED RECOGNIZER
// =============================================================================

// unsupportedRecognizer is the stand-in where no speech engine exists.
// Start fails immediately with ErrUnsupported; its channels never deliver.
type unsupportedRecognizer struct {
	fragments chan string
	errs      chan error
}

// NewUnsupported returns the recognizer used when no speech engine is
// available.
func NewUnsupported() Recognizer {
	r := &unsupportedRecognizer{
		fragments: make(chan string),
		errs:      make(chan error),
	}
	close(r.fragments)
	close(r.errs)
	return r
}

func (r *unsupportedRecognizer) Start() error {
	return ErrUnsupported
}

func (r *unsupportedRecognizer) Stop() {}

func (r *unsupportedRecognizer) Fragments() <-chan string {
	return r.fragments
}

func (r *unsupportedRecognizer) Errors() <-chan error {
	return r.errs
}

func (r *unsupportedRecognizer) Listening() bool {
	return false
}
