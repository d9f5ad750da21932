package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/orientanurag/upnext-mvp/internal/services"
)

type MusicHandler struct {
	music *services.MusicService
}

func NewMusicHandler(music *services.MusicService) *MusicHandler {
	return &MusicHandler{music: music}
}

// SearchTracks searches the song catalog
// @Summary Search tracks
// @Description Search the music catalog; returns an empty list when the catalog is unreachable
// @Tags music
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Maximum results (default 10)"
// @Success 200 {object} object{tracks=[]services.Track,count=int}
// @Failure 400 {object} services.ErrorResponse "Missing query"
// @Router /music/search [get]
func (h *MusicHandler) SearchTracks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		services.SendErrorResponse(w, "q query parameter required", http.StatusBadRequest, nil)
		return
	}
	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	tracks := h.music.SearchTracks(r.Context(), query, limit)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"tracks": tracks,
		"count":  len(tracks),
	})
}
