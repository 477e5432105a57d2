// Package validation provides common validation utilities for configuration
// parameters across the gopool library.
//
// Every helper returns a *errors.ValidationError, so callers can test for
// misconfiguration with errors.Is(err, errors.ErrInvalidConfiguration).
package validation
