package audit

import (
	"context"

	"github.com/rs/zerolog"
)

// Aggregator folds the paginated registry listing into per-owner holding
// counts.
type Aggregator struct {
	source SegmentSource
	cfg    Config
	logger *zerolog.Logger
}

// NewAggregator creates an aggregator over the given segment source.
func NewAggregator(source SegmentSource, cfg Config, logger *zerolog.Logger) *Aggregator {
	return &Aggregator{source: source, cfg: cfg, logger: logger}
}

// AggregateHoldings fetches every segment under the configured registry
// root and counts segments per owner, skipping blacklisted addresses.
//
// Pagination terminates when the server-reported total has been
// accumulated, not when a short page arrives. A transport failure stops the
// loop and returns whatever was accumulated so far; the FetchStatus tells
// the caller the result is partial.
func (a *Aggregator) AggregateHoldings(ctx context.Context) (Holdings, FetchStatus) {
	holdings := make(Holdings)
	blacklist := a.cfg.blacklisted()

	status := FetchStatus{Complete: true}
	offset := 0
	for {
		segments, total, err := a.source.Page(ctx, a.cfg.ParentAppID, a.cfg.PageSize, offset)
		if err != nil {
			a.logger.Error().
				Err(err).
				Str("parent_app_id", a.cfg.ParentAppID).
				Int("offset", offset).
				Msg("segment page fetch failed, continuing with partial registry")
			status.Complete = false
			status.Err = err
			break
		}

		for _, segment := range segments {
			if segment.Owner == "" {
				continue
			}
			if _, banned := blacklist[segment.Owner]; banned {
				continue
			}
			holdings[segment.Owner]++
		}

		status.Fetched += len(segments)
		status.Expected = total
		offset += a.cfg.PageSize

		if status.Fetched >= total {
			break
		}
		if len(segments) == 0 {
			// Server promised more records than it returns. Stop rather
			// than loop forever on a stale total.
			a.logger.Warn().
				Int("fetched", status.Fetched).
				Int("expected", total).
				Msg("registry returned an empty page before reaching its reported total")
			status.Complete = false
			break
		}
	}

	a.logger.Debug().
		Int("segments", status.Fetched).
		Int("owners", len(holdings)).
		Bool("complete", status.Complete).
		Msg("registry aggregation finished")

	return holdings, status
}
