package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/infrastructure/config"
)

// PaystackGateway charges through the Paystack REST API. The invoice id
// is sent as the transaction reference, so Paystack rejects a second
// charge attempt for the same invoice instead of double-billing.
type PaystackGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewPaystackGateway(cfg *config.GatewayConfig) *PaystackGateway {
	return &PaystackGateway{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

func (g *PaystackGateway) Name() string { return "paystack" }

type paystackChargeRequest struct {
	Email     string         `json:"email"`
	Amount    int64          `json:"amount"`
	Currency  string         `json:"currency"`
	Reference string         `json:"reference"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type paystackChargeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

func (g *PaystackGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body, err := json.Marshal(paystackChargeRequest{
		Email:     req.Email,
		Amount:    req.AmountCents,
		Currency:  req.Currency,
		Reference: req.InvoiceID,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charge", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		var urlErr interface{ Timeout() bool }
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, domainErrors.ErrGatewayTimeout
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domainErrors.ErrGatewayTimeout
		}
		return nil, fmt.Errorf("charge request: %w", err)
	}
	defer resp.Body.Close()

	var chargeResp paystackChargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&chargeResp); err != nil {
		return nil, fmt.Errorf("decode charge response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, chargeResp.Message)
	}
	if resp.StatusCode >= 400 || !chargeResp.Status || chargeResp.Data.Status != "success" {
		return &ChargeResult{
			Reference:    chargeResp.Data.Reference,
			Status:       "failed",
			ErrorMessage: chargeResp.Message,
		}, domainErrors.ErrGatewayDeclined
	}

	return &ChargeResult{
		Reference: chargeResp.Data.Reference,
		Status:    "success",
	}, nil
}

var _ Gateway = (*PaystackGateway)(nil)
