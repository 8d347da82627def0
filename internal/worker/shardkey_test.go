package worker_test

import (
	"encoding/json"
	"testing"

	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/worker"
	"github.com/stretchr/testify/assert"
)

func rawEnvelope(payload string) *event.Envelope {
	return &event.Envelope{Payload: json.RawMessage(payload)}
}

func TestAuctionShardKey(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"settlement event carries auctionId", `{"auctionId": "a-1", "amount": 200}`, "a-1"},
		{"lifecycle event carries id", `{"id": "a-2", "seller": "s-1"}`, "a-2"},
		{"auctionId wins over id", `{"auctionId": "a-1", "id": "b-1"}`, "a-1"},
		{"neither field present", `{"amount": 200}`, ""},
		{"malformed payload", `not json`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, worker.AuctionShardKey(rawEnvelope(tt.payload)))
		})
	}
}

func TestInvoiceShardKey(t *testing.T) {
	assert.Equal(t, "inv-1", worker.InvoiceShardKey(rawEnvelope(`{"invoiceId": "inv-1"}`)))
	assert.Equal(t, "", worker.InvoiceShardKey(rawEnvelope(`{"auctionId": "a-1"}`)))
	assert.Equal(t, "", worker.InvoiceShardKey(rawEnvelope(`{"invoiceId"`)))
}
