package notification

import (
	"context"
	"encoding/json"

	"github.com/auctionworks/settlement/internal/domain/deadletter"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/notify"
	"github.com/rs/zerolog"
)

// BroadcastHandler pushes settlement events to connected SSE clients.
// The service holds no domain state of its own, but each message still
// passes the inbox so a redelivery does not notify clients twice.
type BroadcastHandler struct {
	hub    *notify.Hub
	logger zerolog.Logger
}

func NewBroadcastHandler(hub *notify.Hub, logger zerolog.Logger) *BroadcastHandler {
	return &BroadcastHandler{hub: hub, logger: logger}
}

func (h *BroadcastHandler) Handle(ctx context.Context, env *event.Envelope) error {
	auctionID, err := auctionIDFor(env)
	if err != nil {
		return &deadletter.Error{Reason: deadletter.ReasonUndecodable, Detail: err.Error()}
	}

	h.hub.Broadcast(notify.Message{
		EventType: env.EventType,
		AuctionID: auctionID,
		Payload:   env.Payload,
	})

	h.logger.Debug().
		Str("event_type", env.EventType).
		Str("auction_id", auctionID).
		Msg("Notification broadcast")
	return nil
}

// auctionIDFor extracts the auction identity from any settlement event
// payload. All events carry it under auctionId except the auction
// lifecycle events, which use id.
func auctionIDFor(env *event.Envelope) (string, error) {
	var probe struct {
		AuctionID string `json:"auctionId"`
		ID        string `json:"id"`
	}
	if err := json.Unmarshal(env.Payload, &probe); err != nil {
		return "", err
	}
	if probe.AuctionID != "" {
		return probe.AuctionID, nil
	}
	return probe.ID, nil
}
