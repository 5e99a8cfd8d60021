package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/vidtube-backend/internal/middleware"
	"github.com/vidtube/vidtube-backend/internal/services"
	"github.com/vidtube/vidtube-backend/pkg/apierr"
)

type ChannelHandler struct {
	channels *services.ChannelService
}

func NewChannelHandler(channels *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

// GetChannelProfile handles GET /c/{username} (access token required).
func (h *ChannelHandler) GetChannelProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.UserID(r.Context())
	if !ok {
		RespondError(w, apierr.Unauthorized("Unauthorized request"))
		return
	}

	profile, err := h.channels.GetChannelProfile(r.Context(), chi.URLParam(r, "username"), viewerID)
	if err != nil {
		RespondError(w, err)
		return
	}

	respond(w, http.StatusOK, profile, "Channel profile fetched")
}

// GetWatchHistory handles GET /watch-history (access token required).
func (h *ChannelHandler) GetWatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		RespondError(w, apierr.Unauthorized("Unauthorized request"))
		return
	}

	history, err := h.channels.GetWatchHistory(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	respond(w, http.StatusOK, history, "Watch history fetched")
}
