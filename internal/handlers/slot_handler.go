package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/orientanurag/upnext-mvp/internal/services"
)

type SlotHandler struct {
	slots  *services.SlotService
	bids   *services.BidService
	expiry *services.ExpiryService
}

func NewSlotHandler(slots *services.SlotService, bids *services.BidService, expiry *services.ExpiryService) *SlotHandler {
	return &SlotHandler{
		slots:  slots,
		bids:   bids,
		expiry: expiry,
	}
}

// GetCurrentSlot returns the wall-clock current slot
// @Summary Current slot
// @Description The slot whose window contains now, or null in a gap
// @Tags slots
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} object{slot=models.Slot}
// @Failure 404 {object} services.ErrorResponse "Unknown event"
// @Router /events/{eventId}/slots/current [get]
func (h *SlotHandler) GetCurrentSlot(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	slot, err := h.slots.CurrentSlot(r.Context(), eventID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"slot": slot})
}

// GetTopBids lists a slot's unresolved bids in leaderboard order
// @Summary Top bids for a slot
// @Description Pending and approved bids, amount descending, earliest bidder wins ties
// @Tags slots
// @Produce json
// @Param slotId path string true "Slot ID"
// @Param limit query int false "Maximum results (default 50)"
// @Success 200 {array} models.Bid
// @Router /slots/{slotId}/bids [get]
func (h *SlotHandler) GetTopBids(w http.ResponseWriter, r *http.Request) {
	slotID := chi.URLParam(r, "slotId")
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	bids, err := h.bids.TopBids(r.Context(), slotID, limit)
	if err != nil {
		services.SendErrorResponse(w, "Failed to fetch bids", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bids)
}

// GetUpcomingSlots lists the next open slots with their top approved bids
// @Summary Upcoming slots
// @Tags slots
// @Produce json
// @Param eventId path string true "Event ID"
// @Param limit query int false "Maximum results (default 10)"
// @Success 200 {array} services.UpcomingSlot
// @Router /events/{eventId}/slots/upcoming [get]
func (h *SlotHandler) GetUpcomingSlots(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	upcoming, err := h.slots.UpcomingSlots(r.Context(), eventID, limit)
	if err != nil {
		services.SendErrorResponse(w, "Failed to fetch slots", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(upcoming)
}

// ForceNextSlot manually rotates to the next slot
// @Summary Force slot rotation
// @Description Complete the current slot (refunding unresolved bids) and open the next one
// @Tags slots
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID"
// @Success 200 {object} object{slot=models.Slot}
// @Router /events/{eventId}/slots/next [post]
func (h *SlotHandler) ForceNextSlot(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	slot, err := h.expiry.ForceNextSlot(r.Context(), eventID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"slot": slot})
}

// GetStatistics summarizes an event's schedule and takings
// @Summary Slot statistics
// @Tags slots
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID"
// @Success 200 {object} services.SlotStatistics
// @Router /events/{eventId}/statistics [get]
func (h *SlotHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	stats, err := h.slots.Statistics(r.Context(), eventID)
	if err != nil {
		services.SendErrorResponse(w, "Failed to fetch statistics", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
