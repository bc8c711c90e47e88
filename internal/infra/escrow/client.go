package escrow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domainescrow "escrowbook/internal/domain/escrow"
	"escrowbook/internal/pkg/config"
	"escrowbook/internal/pkg/errs"

	"github.com/google/uuid"
)

// Client talks to the escrow gateway over HTTP. Every call submits a ledger
// transaction and returns its reference; the booking itself only moves when
// the resulting ledger event comes back through the monitor.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	maxAttempts int
	retryBase   time.Duration
}

func NewClient(cfg config.EscrowConfig) *Client {
	return &Client{
		baseURL:     cfg.GatewayURL,
		apiKey:      cfg.APIKey,
		httpClient:  &http.Client{Timeout: cfg.CallTimeout},
		maxAttempts: cfg.MaxAttempts,
		retryBase:   cfg.RetryBaseWait,
	}
}

type depositRequest struct {
	BookingID   string `json:"booking_id"`
	AmountCents int64  `json:"amount_cents"`
	FeeBps      int32  `json:"fee_bps"`
}

type bookingRefRequest struct {
	BookingID string `json:"booking_id"`
}

type txResponse struct {
	TxRef       string    `json:"tx_ref"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Deposit asks the gateway to lock the booking amount in escrow.
func (c *Client) Deposit(ctx context.Context, bookingID uuid.UUID, amountCents int64, feeBps int32) (*domainescrow.PendingTx, error) {
	return c.submit(ctx, "/v1/escrow/deposit", depositRequest{
		BookingID:   bookingID.String(),
		AmountCents: amountCents,
		FeeBps:      feeBps,
	})
}

// Complete releases the escrowed funds to the provider minus the platform fee.
func (c *Client) Complete(ctx context.Context, bookingID uuid.UUID) (*domainescrow.PendingTx, error) {
	return c.submit(ctx, "/v1/escrow/complete", bookingRefRequest{BookingID: bookingID.String()})
}

// EmergencyCancel refunds the full escrowed amount to the customer.
func (c *Client) EmergencyCancel(ctx context.Context, bookingID uuid.UUID) (*domainescrow.PendingTx, error) {
	return c.submit(ctx, "/v1/escrow/cancel", bookingRefRequest{BookingID: bookingID.String()})
}

func (c *Client) submit(ctx context.Context, path string, payload any) (*domainescrow.PendingTx, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode escrow request")
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			wait := c.retryBase * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, errs.Mark(errs.Wrap(ctx.Err(), "escrow call cancelled"), errs.ErrChainCallFailed)
			case <-time.After(wait):
			}
		}

		tx, retryable, err := c.doOnce(ctx, path, body)
		if err == nil {
			return tx, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, errs.Mark(lastErr, errs.ErrChainCallFailed)
}

func (c *Client) doOnce(ctx context.Context, path string, body []byte) (*domainescrow.PendingTx, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, false, errs.Wrap(err, "failed to build escrow request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures and timeouts are worth retrying.
		return nil, true, errs.Wrap(err, "escrow gateway unreachable")
	}
	defer res.Body.Close()

	resBody, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
	case res.StatusCode >= 500:
		return nil, true, errs.Newf("escrow gateway error: %s (%d)", string(resBody), res.StatusCode)
	default:
		// 4xx means the request itself is bad; retrying cannot fix it.
		return nil, false, errs.Newf("escrow gateway rejected request: %s (%d)", string(resBody), res.StatusCode)
	}

	var parsed txResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return nil, false, errs.Wrap(err, fmt.Sprintf("failed to parse escrow response: %s", string(resBody)))
	}
	if parsed.TxRef == "" {
		return nil, false, errs.New("escrow response missing tx_ref")
	}

	return &domainescrow.PendingTx{
		TxRef:       parsed.TxRef,
		SubmittedAt: parsed.SubmittedAt,
	}, false, nil
}
