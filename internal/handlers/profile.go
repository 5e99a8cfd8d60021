package handlers

import (
	"net/http"

	"github.com/vidtube/vidtube-backend/internal/config"
	"github.com/vidtube/vidtube-backend/internal/middleware"
	"github.com/vidtube/vidtube-backend/internal/services"
	"github.com/vidtube/vidtube-backend/pkg/apierr"
)

type ProfileHandler struct {
	profiles *services.ProfileService
	cfg      *config.Config
}

func NewProfileHandler(profiles *services.ProfileService, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, cfg: cfg}
}

// UpdateProfile handles PATCH /me (multipart: optional fields and files).
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		RespondError(w, apierr.Unauthorized("Unauthorized request"))
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		RespondError(w, apierr.BadRequest("Invalid multipart form"))
		return
	}

	in := services.ProfileUpdateInput{
		FullName:    r.FormValue("fullName"),
		Email:       r.FormValue("email"),
		DeleteCover: r.FormValue("deleteCover") == "true",
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
	defer removeStaged(avatarPath)
	defer removeStaged(coverPath)

	in.AvatarPath = avatarPath
	in.CoverPath = coverPath

	user, err := h.profiles.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		RespondError(w, err)
		return
	}

	respond(w, http.StatusOK, user, "Profile updated successfully")
}

func (h *ProfileHandler) stageFormFile(r *http.Request, field string) (string, error) {
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
