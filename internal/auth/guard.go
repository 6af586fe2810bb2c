package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/isdelr/mylibrary-be/internal/models"
	"github.com/isdelr/mylibrary-be/internal/repository"
	"github.com/rs/zerolog/log"
)

// Cookie names used as the token carrier.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type contextKey string

const subjectKey = contextKey("subjectID")

// SubjectID returns the user id a guard attached to the request context.
func SubjectID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectKey).(string)
	return id, ok
}

// WithSubjectID attaches a subject id to ctx. Exported for handler tests.
func WithSubjectID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, subjectKey, id)
}

// Guard holds the per-request authorization checks. Each check is a chi
// middleware that runs before the handler body and never mutates state;
// Access or Refresh must precede RequireRoles so a subject id is attached.
type Guard struct {
	codec *Codec
	users repository.UserRepository
}

// NewGuard creates a Guard backed by the given codec and user store.
func NewGuard(codec *Codec, users repository.UserRepository) *Guard {
	return &Guard{codec: codec, users: users}
}

// Access verifies the access-token cookie and attaches the subject id to the
// request context. Verification is pure, so forged or expired tokens are
// rejected before any store access.
func (g *Guard) Access(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractFromCookie(r.Header.Get("Cookie"), AccessTokenCookie)
		if token == "" {
			unauthorized(w, "Access token not found")
			return
		}

		subjectID, err := g.codec.Verify(token)
		if err != nil {
			log.Warn().Err(err).Msg("Access token rejected")
			unauthorized(w, err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSubjectID(r.Context(), subjectID)))
	})
}

// Refresh verifies the refresh-token cookie against both its signature and
// the stored hash, so a signed-but-rotated-away token is rejected.
func (g *Guard) Refresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractFromCookie(r.Header.Get("Cookie"), RefreshTokenCookie)
		if token == "" {
			unauthorized(w, "Refresh token not found")
			return
		}

		subjectID, err := g.codec.Verify(token)
		if err != nil {
			log.Warn().Err(err).Msg("Refresh token rejected")
			unauthorized(w, err.Error())
			return
		}

		user, err := g.users.Find(r.Context(), repository.ByID(subjectID))
		if err != nil {
			log.Warn().Err(err).Str("user_id", subjectID).Msg("Refresh for unknown user")
			unauthorized(w, "User not found")
			return
		}
		if user.RefreshTokenHash == "" || !VerifySecret(user.RefreshTokenHash, token) {
			log.Warn().Str("user_id", subjectID).Msg("Refresh token does not match stored hash")
			unauthorized(w, "Invalid refresh token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSubjectID(r.Context(), subjectID)))
	})
}

// RequireRoles allows the request only when the subject's role is in the
// given set. It must run after Access or Refresh.
func (g *Guard) RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subjectID, ok := SubjectID(r.Context())
			if !ok {
				unauthorized(w, "Access token not found")
				return
			}

			user, err := g.users.Find(r.Context(), repository.ByID(subjectID))
			if err != nil {
				log.Warn().Err(err).Str("user_id", subjectID).Msg("Role check for unknown user")
				unauthorized(w, "User not found")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn().Str("user_id", subjectID).Str("role", string(user.Role)).Msg("Insufficient role")
			unauthorized(w, "You do not have the required role")
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"statusCode": http.StatusUnauthorized,
		"message":    message,
	})
}
