package common

import (
	"errors"
	"strings"
)

// Public errors shared across packages
var (
	ErrNilPointer   = errors.New("nil pointer")
	ErrNilArguments = errors.New("received nil argument(s)")
	ErrDateUnset    = errors.New("date unset")
)

// Errors defines multiple errors
type Errors []error

// Error implements the error interface
func (e Errors) Error() string {
	joined := make([]string, len(e))
	for i := range e {
		joined[i] = e[i].Error()
	}
	return strings.Join(joined, ", ")
}

// FitStringToLimit ensures a string is of a certain length, either by padding
// it with spacer or by truncating it, keeping report columns aligned
func FitStringToLimit(str, spacer string, limit int, upper bool) string {
	if limit < 0 {
		return str
	}
	if limit == 0 {
		return ""
	}
	spacerLen := len(spacer)
	if upper {
		str = strings.ToUpper(str)
	}
	if len(str) > limit {
		return str[0:limit-3] + "..."
	}
	for i := len(str); i < limit; i += spacerLen {
		str += spacer
	}
	return str[0:limit]
}
