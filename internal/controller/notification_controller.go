package controller

import (
	"fmt"
	"net/http"

	"github.com/auctionworks/settlement/internal/notify"
	"github.com/go-chi/chi/v5"
)

// NotificationController streams settlement events to clients over SSE.
type NotificationController struct {
	hub *notify.Hub
}

func NewNotificationController(hub *notify.Hub) *NotificationController {
	return &NotificationController{hub: hub}
}

// StreamAll handles GET /api/v1/events
func (h *NotificationController) StreamAll(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, "")
}

// StreamAuction handles GET /api/v1/auctions/{id}/events
func (h *NotificationController) StreamAuction(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.stream(w, r, id.String())
}

func (h *NotificationController) stream(w http.ResponseWriter, r *http.Request, topic string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "streaming unsupported",
			Code:  "streaming_unsupported",
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := h.hub.Subscribe(topic)
	defer h.hub.Unsubscribe(topic, ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.EventType, msg.Payload)
			flusher.Flush()
		}
	}
}
