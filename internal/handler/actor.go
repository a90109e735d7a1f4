package handler

import (
	"net/http"

	"go-content-retention/internal/middleware"
)

// actorFromRequest returns the acting user id from the validated token
// claims, or empty when the request is unauthenticated (the log service
// records "system" in that case).
func actorFromRequest(r *http.Request) string {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.UserID
}
