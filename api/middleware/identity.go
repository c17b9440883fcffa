package middleware

import (
	"net/http"

	"github.com/angelmondragon/clothing-store-backend/api/responses"
	"github.com/angelmondragon/clothing-store-backend/internal/identity"
	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
	"github.com/google/uuid"
)

// SessionHeader carries the guest cart token.
const SessionHeader = "X-Session-Id"

// Identity resolves the cart owner for the request: the authenticated user
// from OptionalAuth when present, else the guest session header.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID *uuid.UUID
			if id, ok := UserIDFromContext(r.Context()); ok {
				userID = &id
			}

			owner, err := identity.Resolve(userID, r.Header.Get(SessionHeader))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := identity.WithContext(r.Context(), owner)
			if logg != nil {
				if session, ok := owner.SessionID(); ok {
					ctx = logg.WithSessionID(ctx, session)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
