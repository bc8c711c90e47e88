//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateTestOffering inserts an offering open every day of the week so tests
// can book any aligned slot without weekday math.
func CreateTestOffering(t *testing.T, db DBLike, providerID uuid.UUID, priceCents int64) uuid.UUID {
	t.Helper()

	offeringID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO offerings (id, provider_id, title, duration_min, buffer_min, price_cents, fee_bps, timezone)
		VALUES ($1, $2, 'Test Offering', 30, 15, $3, 1000, 'UTC')`,
		offeringID, providerID, priceCents)
	require.NoError(t, err)

	for weekday := 0; weekday < 7; weekday++ {
		_, err = db.Exec(ctx, `
			INSERT INTO offering_windows (offering_id, weekday, enabled, start_min, end_min)
			VALUES ($1, $2, true, 0, 1440)`,
			offeringID, weekday)
		require.NoError(t, err)
	}

	return offeringID
}

// CreateTestBooking inserts a booking row directly in the given status,
// bypassing the command path. Used to stage lifecycle states the API alone
// cannot reach without a ledger event.
func CreateTestBooking(t *testing.T, db DBLike, offeringID, providerID, customerID uuid.UUID, startAt time.Time, status string) uuid.UUID {
	t.Helper()

	bookingID := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO bookings (id, offering_id, provider_id, customer_id, start_at, duration_min, buffer_min, status)
		VALUES ($1, $2, $3, $4, $5, 30, 15, $6)`,
		bookingID, offeringID, providerID, customerID, startAt, status)
	require.NoError(t, err)

	return bookingID
}

// CreateTestEscrow mirrors a ledger-side escrow state for a booking, standing
// in for the deposit event a real gateway would emit.
func CreateTestEscrow(t *testing.T, db DBLike, bookingID uuid.UUID, status string, amountCents int64) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO escrow_records (booking_id, status, amount_cents, fee_bps, deposit_tx, last_event_seq)
		VALUES ($1, $2, $3, 1000, '0xseeded', 1)`,
		bookingID, status, amountCents)
	require.NoError(t, err)
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables between subtests
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return nil
}
