package web

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// PathUUID parses the named path wildcard of r as a UUID.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("path value %q is empty", name)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse path value %q: %w", name, err)
	}
	return id, nil
}
