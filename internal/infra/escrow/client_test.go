//go:build unit

package escrow_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"escrowbook/internal/infra/escrow"
	"escrowbook/internal/pkg/config"
	"escrowbook/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientConfig(url string) config.EscrowConfig {
	return config.EscrowConfig{
		GatewayURL:    url,
		APIKey:        "test-key",
		CallTimeout:   time.Second,
		MaxAttempts:   3,
		RetryBaseWait: time.Millisecond,
	}
}

func writeTx(t *testing.T, w http.ResponseWriter, ref string) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{
		"tx_ref":       ref,
		"submitted_at": time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()
	bookingID := uuid.New()

	t.Run("submits and parses the transaction", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			writeTx(t, w, "0xdeposit")
		}))
		defer srv.Close()

		tx, err := escrow.NewClient(clientConfig(srv.URL)).Deposit(ctx, bookingID, 5000, 1000)
		require.NoError(t, err)
		assert.Equal(t, "0xdeposit", tx.TxRef)
		assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), tx.SubmittedAt)

		assert.Equal(t, "/v1/escrow/deposit", gotPath)
		assert.Equal(t, "Bearer test-key", gotAuth)
		assert.Equal(t, bookingID.String(), gotBody["booking_id"])
		assert.Equal(t, float64(5000), gotBody["amount_cents"])
	})

	t.Run("retries server errors until one succeeds", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			writeTx(t, w, "0xretry")
		}))
		defer srv.Close()

		tx, err := escrow.NewClient(clientConfig(srv.URL)).Deposit(ctx, bookingID, 5000, 1000)
		require.NoError(t, err)
		assert.Equal(t, "0xretry", tx.TxRef)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("exhausted retries surface a chain failure", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := escrow.NewClient(clientConfig(srv.URL)).Deposit(ctx, bookingID, 5000, 1000)
		assert.ErrorIs(t, err, errs.ErrChainCallFailed)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("rejected requests are not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		_, err := escrow.NewClient(clientConfig(srv.URL)).Deposit(ctx, bookingID, 5000, 1000)
		assert.ErrorIs(t, err, errs.ErrChainCallFailed)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("response without a tx_ref is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := escrow.NewClient(clientConfig(srv.URL)).Deposit(ctx, bookingID, 5000, 1000)
		assert.ErrorIs(t, err, errs.ErrChainCallFailed)
	})
}

func TestCompleteAndCancel(t *testing.T) {
	ctx := context.Background()
	bookingID := uuid.New()

	paths := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		writeTx(t, w, "0xtx")
	}))
	defer srv.Close()

	c := escrow.NewClient(clientConfig(srv.URL))

	_, err := c.Complete(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, "/v1/escrow/complete", <-paths)

	_, err = c.EmergencyCancel(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, "/v1/escrow/cancel", <-paths)
}
