package calendar

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"escrowbook/internal/domain/timeslot"
	"escrowbook/internal/infra/repository"
	"escrowbook/internal/pkg/config"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// BusyIntervalSource yields the provider's external calendar busy windows
// intersecting the range. Implementations must degrade, never block: a
// provider without links or a failing fetch returns no intervals.
type BusyIntervalSource interface {
	BusyIntervals(ctx context.Context, providerID uuid.UUID, within timeslot.Interval) []timeslot.Interval
}

type LinkReader interface {
	FindByProvider(ctx context.Context, providerID uuid.UUID) ([]repository.CalendarLink, error)
	UpdateToken(ctx context.Context, providerID uuid.UUID, platform string, tokenJSON []byte) error
}

// GoogleSource resolves busy intervals through the Google Calendar FreeBusy
// API using per-provider OAuth tokens stored by the identity collaborator.
type GoogleSource struct {
	links        LinkReader
	oauthConfig  *oauth2.Config
	fetchTimeout time.Duration
	logger       *slog.Logger
}

func NewGoogleSource(links LinkReader, oauthConfig *oauth2.Config, cfg config.CalendarConfig, logger *slog.Logger) *GoogleSource {
	return &GoogleSource{
		links:        links,
		oauthConfig:  oauthConfig,
		fetchTimeout: cfg.FetchTimeout,
		logger:       logger,
	}
}

// BusyIntervals never returns an error: external calendar trouble must not
// take availability down, so failures are logged and treated as no conflicts.
func (s *GoogleSource) BusyIntervals(ctx context.Context, providerID uuid.UUID, within timeslot.Interval) []timeslot.Interval {
	links, err := s.links.FindByProvider(ctx, providerID)
	if err != nil {
		s.logger.Warn("calendar links lookup failed, skipping calendar conflicts",
			"provider_id", providerID, "error", err)
		return nil
	}

	var busy []timeslot.Interval
	for _, link := range links {
		if link.Platform != "google" {
			continue
		}
		intervals, err := s.fetchBusy(ctx, link, within)
		if err != nil {
			s.logger.Warn("calendar busy fetch failed, skipping calendar conflicts",
				"provider_id", providerID, "calendar_id", link.CalendarID, "error", err)
			continue
		}
		busy = append(busy, intervals...)
	}
	return timeslot.Merge(busy)
}

func (s *GoogleSource) fetchBusy(ctx context.Context, link repository.CalendarLink, within timeslot.Interval) ([]timeslot.Interval, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	var token oauth2.Token
	if err := json.Unmarshal(link.TokenJSON, &token); err != nil {
		return nil, err
	}

	// ReuseTokenSource refreshes expired access tokens transparently; the
	// refreshed token is written back so the next fetch skips the round trip.
	source := oauth2.ReuseTokenSource(&token, s.oauthConfig.TokenSource(ctx, &token))
	srv, err := gcal.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, err
	}

	res, err := srv.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: within.Start.Format(time.RFC3339),
		TimeMax: within.End.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: link.CalendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if fresh, err := source.Token(); err == nil && fresh.AccessToken != token.AccessToken {
		if raw, err := json.Marshal(fresh); err == nil {
			if err := s.links.UpdateToken(ctx, link.ProviderID, link.Platform, raw); err != nil {
				s.logger.Warn("failed to persist refreshed calendar token",
					"provider_id", link.ProviderID, "error", err)
			}
		}
	}

	var out []timeslot.Interval
	for _, cal := range res.Calendars {
		for _, period := range cal.Busy {
			start, err := time.Parse(time.RFC3339, period.Start)
			if err != nil {
				continue
			}
			end, err := time.Parse(time.RFC3339, period.End)
			if err != nil {
				continue
			}
			if iv, err := timeslot.New(start, end); err == nil {
				out = append(out, iv)
			}
		}
	}
	return out, nil
}

// NoopSource is used when calendar sync is disabled.
type NoopSource struct{}

func (NoopSource) BusyIntervals(context.Context, uuid.UUID, timeslot.Interval) []timeslot.Interval {
	return nil
}
