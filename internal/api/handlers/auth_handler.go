package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/mylibrary-be/internal/auth"
	"github.com/isdelr/mylibrary-be/internal/config"
	"github.com/isdelr/mylibrary-be/internal/services"
)

// AuthHandler handles registration, login and the rest of the session
// endpoints. Tokens travel in the accessToken/refreshToken cookies.
type AuthHandler struct {
	sessions services.SessionServiceProvider
	cfg      *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions services.SessionServiceProvider, cfg *config.Config) *AuthHandler {
	return &AuthHandler{sessions: sessions, cfg: cfg}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// setAuthCookies writes the token pair into the auth cookies. Secure and
// SameSite vary by environment: lax in development, none behind TLS in
// production, with strict available for the registration response.
func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, tokens services.Tokens, sameSite http.SameSite) {
	isProd := h.cfg.IsProduction()
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    tokens.AccessToken,
		MaxAge:   int(h.cfg.AccessTokenTTL / time.Second),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: sameSite,
		Path:     "/",
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		MaxAge:   int(h.cfg.RefreshTokenTTL / time.Second),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: sameSite,
		Path:     "/",
	})
}

func (h *AuthHandler) defaultSameSite() http.SameSite {
	if h.cfg.IsProduction() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (h *AuthHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cfg.IsProduction(),
			SameSite: h.defaultSameSite(),
			Path:     "/",
		})
	}
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decode(w, r, &payload) {
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respond(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	user, tokens, err := h.sessions.Register(r.Context(), services.RegisterInput{
		Email:       payload.Email,
		Username:    payload.Username,
		Password:    payload.Password,
		PhoneNumber: payload.PhoneNumber,
	})
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		respondError(w, err)
		return
	}

	h.setAuthCookies(w, tokens, http.SameSiteStrictMode)
	respond(w, http.StatusCreated, "Registration successful", user)
}

// VerifyEmail redeems the token from a verification link.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respond(w, http.StatusBadRequest, "Token is required", nil)
		return
	}

	user, err := h.sessions.VerifyEmail(r.Context(), token)
	if err != nil {
		log.Warn().Err(err).Msg("Email verification failed")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Email successfully verified", user)
}

// Login handles user authentication and sets the auth cookies.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decode(w, r, &payload) {
		return
	}

	tokens, err := h.sessions.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		respondError(w, err)
		return
	}

	h.setAuthCookies(w, tokens, h.defaultSameSite())
	respond(w, http.StatusOK, "Login successful", nil)
}

// RefreshTokens rotates the token pair. The refresh guard has already
// verified the presented token against the stored hash.
func (h *AuthHandler) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.SubjectID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Refresh token not found", nil)
		return
	}

	tokens, err := h.sessions.RefreshTokens(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to refresh tokens")
		respondError(w, err)
		return
	}

	h.setAuthCookies(w, tokens, h.defaultSameSite())
	respond(w, http.StatusOK, "Tokens refreshed successfully", nil)
}

// Logout revokes the stored refresh token and clears the cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.SubjectID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Access token not found", nil)
		return
	}

	if err := h.sessions.Logout(r.Context(), userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to logout")
		respondError(w, err)
		return
	}

	h.clearAuthCookies(w)
	respond(w, http.StatusOK, "Logout successful", nil)
}

// ForgotPassword emails a password-reset link.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &payload) {
		return
	}
	if payload.Email == "" {
		respond(w, http.StatusBadRequest, "Email is required", nil)
		return
	}

	if err := h.sessions.ForgotPassword(r.Context(), payload.Email); err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Forgot-password request failed")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Password reset email sent", nil)
}

// ChangePassword changes the authenticated user's password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.SubjectID(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, "Access token not found", nil)
		return
	}

	var payload struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decode(w, r, &payload) {
		return
	}
	if payload.CurrentPassword == "" || payload.NewPassword == "" {
		respond(w, http.StatusBadRequest, "Current and new password are required", nil)
		return
	}

	if err := h.sessions.ChangePassword(r.Context(), userID, payload.CurrentPassword, payload.NewPassword); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to change password")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Password updated successfully", nil)
}

// ResetPassword redeems the token from a reset link and sets a new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if !decode(w, r, &payload) {
		return
	}
	if payload.Token == "" {
		payload.Token = r.URL.Query().Get("token")
	}
	if payload.Token == "" || payload.NewPassword == "" {
		respond(w, http.StatusBadRequest, "Token and new password are required", nil)
		return
	}

	if err := h.sessions.ResetPassword(r.Context(), payload.Token, payload.NewPassword); err != nil {
		log.Warn().Err(err).Msg("Failed to reset password")
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, "Password reset successfully", nil)
}
