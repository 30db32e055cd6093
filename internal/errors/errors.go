package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Services return these (usually wrapped with fmt.Errorf and %w) so that the
// API layer can use errors.Is() to map them to HTTP responses without the
// business logic knowing anything about status codes.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// Mapped to 404 Not Found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that client input failed business rule validation.
	// Mapped to 400 Bad Request.
	ErrValidation = errors.New("validation failed")

	// ErrServiceUnavailable signifies that the model backend could not be
	// reached at all. Mapped to 503 Service Unavailable when it surfaces over
	// HTTP; over the push channel it becomes an error event.
	ErrServiceUnavailable = errors.New("model service unavailable")

	// ErrTimeout signifies that a model call did not complete within the
	// configured request timeout. Never retried automatically.
	ErrTimeout = errors.New("model request timed out")

	// ErrThemeGeneration signifies that the theme pipeline failed as a whole.
	// The previously cached theme is always retained when this is returned.
	ErrThemeGeneration = errors.New("theme generation failed")

	// ErrInternal signifies an unexpected server-side error. Used to avoid
	// leaking implementation details to the client. Mapped to 500.
	ErrInternal = errors.New("internal server error")
)
