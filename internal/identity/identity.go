// Package identity models who a storefront request acts for: a signed-in
// user or an anonymous guest carrying a client-generated session token.
package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/clothing-store-backend/pkg/errors"
)

// MaxSessionIDLength bounds the guest token accepted from the x-session-id header.
const MaxSessionIDLength = 128

// Kind tags which variant an Identity holds.
type Kind int

const (
	KindNone Kind = iota
	KindUser
	KindGuest
)

// Identity is either User(id) or Guest(token). The zero value is neither and
// is rejected by every cart operation.
type Identity struct {
	kind    Kind
	userID  uuid.UUID
	session string
}

// User builds the authenticated variant.
func User(id uuid.UUID) Identity {
	return Identity{kind: KindUser, userID: id}
}

// Guest builds the anonymous variant. The token is trimmed; no other format
// validation is applied.
func Guest(token string) Identity {
	return Identity{kind: KindGuest, session: strings.TrimSpace(token)}
}

// Resolve picks the identity for a request. An authenticated user wins over a
// session header; neither present is a validation error.
func Resolve(userID *uuid.UUID, sessionID string) (Identity, error) {
	if userID != nil && *userID != uuid.Nil {
		return User(*userID), nil
	}
	token := strings.TrimSpace(sessionID)
	if token == "" {
		return Identity{}, pkgerrors.New(pkgerrors.CodeValidation, "session ID required for guest users")
	}
	if len(token) > MaxSessionIDLength {
		return Identity{}, pkgerrors.New(pkgerrors.CodeValidation, "session ID is too long")
	}
	return Guest(token), nil
}

func (i Identity) Kind() Kind { return i.kind }

func (i Identity) IsUser() bool { return i.kind == KindUser }

func (i Identity) IsGuest() bool { return i.kind == KindGuest }

// UserID returns the user id and whether the identity is a user.
func (i Identity) UserID() (uuid.UUID, bool) {
	return i.userID, i.kind == KindUser
}

// SessionID returns the guest token and whether the identity is a guest.
func (i Identity) SessionID() (string, bool) {
	return i.session, i.kind == KindGuest
}

// Validate rejects the zero identity and malformed variants.
func (i Identity) Validate() error {
	switch i.kind {
	case KindUser:
		if i.userID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
		}
		return nil
	case KindGuest:
		if i.session == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "session ID required for guest users")
		}
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "session ID required for guest users")
	}
}

// String renders the identity for logs without exposing the full guest token.
func (i Identity) String() string {
	switch i.kind {
	case KindUser:
		return "user:" + i.userID.String()
	case KindGuest:
		if len(i.session) > 8 {
			return "guest:" + i.session[:8]
		}
		return "guest:" + i.session
	default:
		return "none"
	}
}

type ctxKey struct{}

// WithContext stores the identity on ctx.
func WithContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithContext.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.kind != KindNone
}
