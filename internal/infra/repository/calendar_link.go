package repository

import (
	"context"
	"errors"
	"time"

	"escrowbook/internal/infra"
	"escrowbook/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CalendarLink is the narrow read surface onto the external calendar
// collaborator: which platforms a provider linked and the OAuth token blob
// the collaborator maintains for us.
type CalendarLink struct {
	ProviderID uuid.UUID
	Platform   string
	TokenJSON  []byte
	CalendarID string
	UpdatedAt  time.Time
}

type CalendarLinkRepository struct {
	dbtx db.DBTX
}

func NewCalendarLinkRepository(dbtx db.DBTX) *CalendarLinkRepository {
	return &CalendarLinkRepository{dbtx: dbtx}
}

func (r *CalendarLinkRepository) FindByProvider(ctx context.Context, providerID uuid.UUID) ([]CalendarLink, error) {
	rows, err := r.dbtx.Query(ctx, `
		SELECT provider_id, platform, token_json, calendar_id, updated_at
		FROM calendar_links WHERE provider_id = $1`, providerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query calendar links", err)
	}
	defer rows.Close()

	var out []CalendarLink
	for rows.Next() {
		var link CalendarLink
		if err := rows.Scan(&link.ProviderID, &link.Platform, &link.TokenJSON, &link.CalendarID, &link.UpdatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan calendar link", err)
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate calendar links", err)
	}
	return out, nil
}

func (r *CalendarLinkRepository) UpdateToken(ctx context.Context, providerID uuid.UUID, platform string, tokenJSON []byte) error {
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE calendar_links SET token_json = $1, updated_at = now()
		WHERE provider_id = $2 AND platform = $3`,
		tokenJSON, providerID, platform,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update calendar token", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("calendar link not found", errors.New(pgx.ErrNoRows.Error()), infra.KindNotFound)
	}
	return nil
}
