package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/orientanurag/upnext-mvp/internal/services"
)

type BidHandler struct {
	bids      *services.BidService
	validator *services.ValidationHelper
}

func NewBidHandler(bids *services.BidService) *BidHandler {
	return &BidHandler{
		bids:      bids,
		validator: services.NewValidationHelper(),
	}
}

// CreateBid submits a new bid
// @Summary Submit a bid
// @Description Debit the wallet and admit the bid into a slot
// @Tags bids
// @Accept json
// @Produce json
// @Param request body services.CreateBidInput true "Bid submission"
// @Success 201 {object} models.Bid
// @Failure 400 {object} services.ErrorResponse "Validation failed"
// @Failure 402 {object} services.ErrorResponse "Insufficient funds"
// @Failure 404 {object} services.ErrorResponse "Unknown wallet or event"
// @Router /bids [post]
func (h *BidHandler) CreateBid(w http.ResponseWriter, r *http.Request) {
	var input services.CreateBidInput

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&input); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	bid, err := h.bids.Submit(r.Context(), &input)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(bid)
}

// SetBidStatus applies an operator transition
// @Summary Approve, reject or play a bid
// @Description Approve a pending bid, reject it (refunding the wallet) or mark it played
// @Tags bids
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bidId path string true "Bid ID"
// @Param request body object{status=string} true "Target status: approved, rejected or played"
// @Success 200 {object} models.Bid
// @Failure 404 {object} services.ErrorResponse "Unknown bid"
// @Failure 409 {object} services.ErrorResponse "Invalid transition"
// @Router /bids/{bidId}/status [put]
func (h *BidHandler) SetBidStatus(w http.ResponseWriter, r *http.Request) {
	bidID := chi.URLParam(r, "bidId")

	var req struct {
		Status string `json:"status" validate:"required,oneof=approved rejected played"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	bid, err := h.bids.SetStatus(r.Context(), bidID, req.Status)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bid)
}

// ListBids lists an event's bids
// @Summary List bids
// @Description List bids for an event, optionally filtered by status
// @Tags bids
// @Produce json
// @Param eventId query string true "Event ID"
// @Param status query string false "Filter by status"
// @Param limit query int false "Maximum results (default 50)"
// @Success 200 {object} object{bids=[]models.Bid,count=int}
// @Router /bids [get]
func (h *BidHandler) ListBids(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("eventId")
	if eventID == "" {
		services.SendErrorResponse(w, "eventId query parameter required", http.StatusBadRequest, nil)
		return
	}
	status := r.URL.Query().Get("status")
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	bids, err := h.bids.List(r.Context(), eventID, status, limit)
	if err != nil {
		services.SendErrorResponse(w, "Failed to fetch bids", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"bids":  bids,
		"count": len(bids),
	})
}

// GetLeaderboard returns the ranked approved bids
// @Summary Event leaderboard
// @Description Approved bids ordered by amount descending, ties to the earliest bidder
// @Tags bids
// @Produce json
// @Param eventId path string true "Event ID"
// @Param limit query int false "Maximum results"
// @Success 200 {array} models.Bid
// @Router /events/{eventId}/leaderboard [get]
func (h *BidHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	leaderboard, err := h.bids.Leaderboard(r.Context(), eventID, limit)
	if err != nil {
		services.SendErrorResponse(w, "Failed to fetch leaderboard", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(leaderboard)
}
