package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/pinvent-backend/internal/middleware"
	"github.com/AnshRaj112/pinvent-backend/internal/models"
	"github.com/AnshRaj112/pinvent-backend/internal/services"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	Password    string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// AuthHandler serves the /api/users routes.
type AuthHandler struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Register handles POST /api/users/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.auth.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.log, err, http.StatusBadRequest)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, profileWithToken(user, token))
}

// Login handles POST /api/users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.log, err, http.StatusBadRequest)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, profileWithToken(user, token))
}

// Logout expires the session cookie. Tokens are not revoked server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Successfully logged out"})
}

// GetUser handles GET /api/users/getuser
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	current, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.auth.GetProfile(r.Context(), current.ID.Hex())
	if err != nil {
		writeError(w, h.log, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}

// LoginStatus handles GET /api/users/loggedin and answers true or false.
func (h *AuthHandler) LoginStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.auth.LoginStatus(middleware.SessionToken(r)))
}

// UpdateUser handles PATCH /api/users/updateuser
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	current, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), current.ID.Hex(), services.ProfileUpdate{
		Name:  req.Name,
		Photo: req.Photo,
		Phone: req.Phone,
		Bio:   req.Bio,
	})
	if err != nil {
		writeError(w, h.log, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user.Profile())
}

// ChangePassword handles PATCH /api/users/changepassword
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	current, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ChangePassword(r.Context(), current.ID.Hex(), req.OldPassword, req.Password); err != nil {
		writeError(w, h.log, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Password changed successfully"})
}

// ForgotPassword handles POST /api/users/forgotpassword
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, h.log, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Reset email sent"})
}

// ResetPassword handles PUT /api/users/resetpassword/{resetToken}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), chi.URLParam(r, "resetToken"), req.Password); err != nil {
		writeError(w, h.log, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Password reset successful"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	ttl := h.auth.SessionTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(ttl) * time.Second),
		MaxAge:   ttl,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func profileWithToken(u *models.User, token string) models.Profile {
	p := u.Profile()
	p.Token = token
	return p
}
