package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/orientanurag/upnext-mvp/internal/config"
	"github.com/orientanurag/upnext-mvp/internal/services"
)

type EventHandler struct {
	events    *services.EventService
	slots     *services.SlotService
	public    *config.PublicConfig
	validator *services.ValidationHelper
}

func NewEventHandler(events *services.EventService, slots *services.SlotService, public *config.PublicConfig) *EventHandler {
	return &EventHandler{
		events:    events,
		slots:     slots,
		public:    public,
		validator: services.NewValidationHelper(),
	}
}

// CreateEvent registers a new auction session
// @Summary Create event
// @Description Register a new event with its schedule parameters
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateEventInput true "Event definition"
// @Success 201 {object} models.Event
// @Failure 400 {object} services.ErrorResponse "Validation failed"
// @Router /events [post]
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input services.CreateEventInput

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

	event, err := h.events.Create(r.Context(), &input)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(event)
}

// GenerateSlots builds the event's slot schedule
// @Summary Generate slots
// @Description Generate the full slot schedule for an event, exactly once
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID"
// @Success 201 {object} object{slots=[]models.Slot,count=int}
// @Failure 409 {object} services.ErrorResponse "Slots already generated"
// @Router /events/{eventId}/slots [post]
func (h *EventHandler) GenerateSlots(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	slots, err := h.slots.GenerateSlots(r.Context(), eventID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"slots": slots,
		"count": len(slots),
	})
}

// ActivateEvent marks the event live
// @Summary Activate event
// @Description Mark the event live and arm its slot rotation timer
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventId path string true "Event ID"
// @Success 200 {object} models.Event
// @Failure 404 {object} services.ErrorResponse "Unknown event"
// @Router /events/{eventId}/activate [post]
func (h *EventHandler) ActivateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.events.Activate(r.Context(), eventID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

// GetEvent looks up an event
// @Summary Get event
// @Tags events
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} models.Event
// @Failure 404 {object} services.ErrorResponse "Unknown event"
// @Router /events/{eventId} [get]
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.events.Get(r.Context(), eventID)
	if err != nil {
		services.SendErrorResponse(w, "Event not found", services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

// GetActiveEvent returns the currently live event
// @Summary Active event
// @Tags events
// @Produce json
// @Success 200 {object} models.Event
// @Failure 404 {object} services.ErrorResponse "No active event"
// @Router /events/active [get]
func (h *EventHandler) GetActiveEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Active(r.Context())
	if err != nil {
		services.SendErrorResponse(w, "No active event", services.StatusForError(err), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

// GetJoinQR generates a QR code guests scan to join the event
// @Summary Event join QR code
// @Description QR code pointing at the guest bidding page for this event
// @Tags events
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} object{url=string,qrImage=string}
// @Failure 404 {object} services.ErrorResponse "Unknown event"
// @Router /events/{eventId}/qr [get]
func (h *EventHandler) GetJoinQR(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.events.Get(r.Context(), eventID)
	if err != nil {
		services.SendErrorResponse(w, "Event not found", services.StatusForError(err), nil)
		return
	}

	joinURL := fmt.Sprintf("%s/join/%s", h.public.BaseURL, event.ID)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		services.SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"url":     joinURL,
		"qrImage": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}
