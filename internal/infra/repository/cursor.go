package repository

import (
	"context"
	"errors"

	"escrowbook/internal/infra"
	"escrowbook/internal/infra/db"

	"github.com/jackc/pgx/v5"
)

type CursorRepository struct {
	dbtx db.DBTX
}

func NewCursorRepository(dbtx db.DBTX) *CursorRepository {
	return &CursorRepository{dbtx: dbtx}
}

func (r *CursorRepository) Get(ctx context.Context, consumer string) (int64, error) {
	var seq int64
	err := r.dbtx.QueryRow(ctx,
		`SELECT last_seq FROM ledger_cursor WHERE consumer = $1`, consumer,
	).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, infra.WrapRepoErr("failed to read ledger cursor", err)
	}
	return seq, nil
}

// Advance only ever moves forward; a stale seq is a silent no-op so replays
// after restart cannot rewind the cursor.
func (r *CursorRepository) Advance(ctx context.Context, consumer string, seq int64) error {
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO ledger_cursor (consumer, last_seq)
		VALUES ($1, $2)
		ON CONFLICT (consumer)
		DO UPDATE SET last_seq = EXCLUDED.last_seq, updated_at = now()
		WHERE ledger_cursor.last_seq < EXCLUDED.last_seq`,
		consumer, seq,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to advance ledger cursor", err)
	}
	return nil
}
