package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/workboard-api/internal/api/middleware"
	"github.com/phrazzld/workboard-api/internal/domain"
)

// actorFromRequest returns the audit actor for the authenticated caller, or
// the system actor for unauthenticated internal calls.
func actorFromRequest(r *http.Request) string {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		if actor := claims.Actor(); actor != "" {
			return actor
		}
	}
	return domain.SystemActor
}

// getPathUUID parses the named chi URL parameter as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", ErrBadRequest, paramName)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", ErrBadRequest, paramName)
	}
	return id, nil
}
