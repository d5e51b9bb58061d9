package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/legendmotors/skywell-leads/internal/http/middleware"
	"github.com/legendmotors/skywell-leads/internal/http/respond"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

// AdminCredentials is the single admin account allowed to log in.
type AdminCredentials struct {
	Username string
	Password string
}

// AdminSessionHandler issues and clears admin session tokens.
type AdminSessionHandler struct {
	creds   AdminCredentials
	session middleware.SessionConfig
	logger  *logging.Logger
	now     func() time.Time
}

// NewAdminSessionHandler creates a new admin session handler.
func NewAdminSessionHandler(creds AdminCredentials, session middleware.SessionConfig, logger *logging.Logger) *AdminSessionHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if session.TTL <= 0 {
		session.TTL = 12 * time.Hour
	}
	return &AdminSessionHandler{
		creds:   creds,
		session: session,
		logger:  logger,
		now:     time.Now,
	}
}

// LoginRequest is the body of POST /api/admin/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the token for clients that cannot use cookies.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login checks the credentials and sets the admin cookie.
func (h *AdminSessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if h.creds.Password == "" || !constantTimeEqual(req.Username, h.creds.Username) || !constantTimeEqual(req.Password, h.creds.Password) {
		h.logger.Warn("admin login rejected", "username", req.Username)
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expires, err := middleware.IssueAdminToken(h.session.Secret, req.Username, h.session.TTL, h.now())
	if err != nil {
		h.logger.Error("failed to issue admin token", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	respond.JSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expires.UTC()})
}

// Logout clears the admin cookie.
func (h *AdminSessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me reports the authenticated admin.
func (h *AdminSessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.AdminClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	resp := map[string]any{"username": claims.Subject}
	if claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Time.UTC()
	}
	respond.JSON(w, http.StatusOK, resp)
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
