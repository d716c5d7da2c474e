// Package error classifies errors that surface at the HTTP edge.
package error

import (
	"context"
	"errors"
)

// IsContextError reports whether err comes from a cancelled or expired request context.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
