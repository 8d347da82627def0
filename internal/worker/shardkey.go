package worker

import (
	"encoding/json"

	"github.com/auctionworks/settlement/internal/event"
)

// AuctionShardKey serializes messages by the auction they concern.
// Settlement events carry the id as auctionId; the auction lifecycle
// events carry it as id. An empty result falls back to per-message
// sharding.
func AuctionShardKey(env *event.Envelope) string {
	var probe struct {
		AuctionID string `json:"auctionId"`
		ID        string `json:"id"`
	}
	if err := json.Unmarshal(env.Payload, &probe); err != nil {
		return ""
	}
	if probe.AuctionID != "" {
		return probe.AuctionID
	}
	return probe.ID
}

// InvoiceShardKey serializes messages by invoice.
func InvoiceShardKey(env *event.Envelope) string {
	var probe struct {
		InvoiceID string `json:"invoiceId"`
	}
	if err := json.Unmarshal(env.Payload, &probe); err != nil {
		return ""
	}
	return probe.InvoiceID
}
