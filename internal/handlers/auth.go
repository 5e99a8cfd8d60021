package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/vidtube/vidtube-backend/internal/config"
	"github.com/vidtube/vidtube-backend/internal/middleware"
	"github.com/vidtube/vidtube-backend/internal/services"
	"github.com/vidtube/vidtube-backend/pkg/apierr"
)

const maxMultipartMemory = 20 << 20 // 20MB for profile images + form data

type AuthHandler struct {
	sessions *services.SessionService
	cfg      *config.Config
}

func NewAuthHandler(sessions *services.SessionService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{sessions: sessions, cfg: cfg}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         interface{} `json:"user,omitempty"`
}

// Register handles POST /register (multipart: fields + avatar/cover files).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		RespondError(w, apierr.BadRequest("Invalid multipart form"))
		return
	}

	in := services.RegisterInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		FullName: r.FormValue("fullName"),
	}

	avatarPath, err := h.stageFormFile(r, "avatar")
	if err != nil {
		RespondError(w, err)
		return
	}
	coverPath, err := h.stageFormFile(r, "coverImage")
	if err != nil {
		RespondError(w, err)
		return
	}
	// The upload path removes staged files itself; these cover early returns.
	defer removeStaged(avatarPath)
	defer removeStaged(coverPath)

	in.AvatarPath = avatarPath
	in.CoverPath = coverPath

	user, err := h.sessions.Register(r.Context(), in)
	if err != nil {
		RespondError(w, err)
		return
	}

	respond(w, http.StatusCreated, user, "User registered successfully")
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, apierr.BadRequest("Invalid request body"))
		return
	}

	user, accessToken, refreshToken, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		RespondError(w, err)
		return
	}

	h.setAuthCookies(w, accessToken, refreshToken)
	respond(w, http.StatusOK, tokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, "Logged in successfully")
}

// Logout handles POST /logout (access token required).
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		RespondError(w, apierr.Unauthorized("Unauthorized request"))
		return
	}

	if err := h.sessions.Logout(r.Context(), userID); err != nil {
		RespondError(w, err)
		return
	}

	h.clearAuthCookies(w)
	respond(w, http.StatusOK, nil, "Logged out successfully")
}

// Refresh handles POST /refresh-token. The refresh token comes from the
// refreshToken cookie or the request body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	tokenString := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		tokenString = cookie.Value
	}
	if tokenString == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			tokenString = req.RefreshToken
		}
	}

	accessToken, refreshToken, err := h.sessions.Refresh(r.Context(), tokenString)
	if err != nil {
		RespondError(w, err)
		return
	}

	h.setAuthCookies(w, accessToken, refreshToken)
	respond(w, http.StatusOK, tokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, "Access token refreshed")
}

// ChangePassword handles POST /change-password (access token required).
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		RespondError(w, apierr.Unauthorized("Unauthorized request"))
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, apierr.BadRequest("Invalid request body"))
		return
	}

	if err := h.sessions.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		RespondError(w, err)
		return
	}

	respond(w, http.StatusOK, nil, "Password changed successfully")
}

// GetMe handles GET /me (access token required).
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		RespondError(w, apierr.Unauthorized("Unauthorized request"))
		return
	}

	user, err := h.sessions.CurrentUser(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	respond(w, http.StatusOK, user, "Current user fetched")
}

// stageFormFile writes the named multipart file to the temp dir and returns
// its path; a missing file yields an empty path with no error.
func (h *AuthHandler) stageFormFile(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return "", nil
	}

	path, err := services.StageUpload(files[0], h.cfg.TempDir)
	if err != nil {
		return "", apierr.Internal("Failed to process uploaded file")
	}
	return path, nil
}

func removeStaged(path string) {
	if path != "" {
		os.Remove(path)
	}
}

func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.cfg.AccessTokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(h.cfg.RefreshTokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
