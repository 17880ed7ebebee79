package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nfdtools/dropaudit/pkg/logging"
)

// Pipeline runs the reconciliation stages in fixed order over two external
// snapshots: the registry listing and the distributor's transfer history.
// The transfer history is fetched once and shared between the matcher and
// the non-qualifying finder so both see the identical snapshot.
type Pipeline struct {
	segments  SegmentSource
	transfers TransferSource
	cfg       Config
	logger    *zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger overrides the pipeline logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a pipeline. The configuration is validated up front; a bad
// config is the only error this package ever returns, everything later
// degrades instead of failing.
func New(segments SegmentSource, transfers TransferSource, cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		segments:  segments,
		transfers: transfers,
		cfg:       cfg,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Result is the terminal artifact of one reconciliation run.
type Result struct {
	// Records are the owners whose delta survived zero-filtering,
	// sorted by address for deterministic output.
	Records []OwnerRecord

	// NonQualifying are transfers sent to addresses outside the
	// known registry-owner set.
	NonQualifying []TransferEvent

	// Totals. Entitlement and received are summed over all owners before
	// zero-filtering; the delta total covers the surviving records only.
	TotalEntitlement decimal.Decimal
	TotalReceived    decimal.Decimal
	TotalDelta       decimal.Decimal

	// Metadata describes the run itself.
	Metadata ResultMetadata

	// Warnings collect the degraded-mode notes (partial registry, failed
	// transfer fetch) that the run survived.
	Warnings []string
}

// ResultMetadata contains timing and completeness data for a run.
type ResultMetadata struct {
	StartTime utc.Time
	EndTime   utc.Time
	Duration  time.Duration

	// Registry reports completeness of the segment fetch.
	Registry FetchStatus

	// TransfersOK is false when the transfer history fetch failed and the
	// run proceeded with zero observed transfers.
	TransfersOK bool

	Stats ResultStatistics
}

// ResultStatistics summarizes stage-level counts.
type ResultStatistics struct {
	SegmentsFetched   int
	OwnersDiscovered  int
	TransfersFetched  int
	TransfersMatched  int
	TransfersSkipped  int
	OutstandingOwners int
}

// IsComplete reports whether both external fetches delivered everything.
func (r *Result) IsComplete() bool {
	return r.Metadata.Registry.Complete && r.Metadata.TransfersOK
}

// Summary returns a one-line human-readable description of the run.
func (r *Result) Summary() string {
	state := "complete"
	if !r.IsComplete() {
		state = fmt.Sprintf("degraded (%d warnings)", len(r.Warnings))
	}
	return fmt.Sprintf("audit %s: %d owners outstanding, total delta %s of %s entitled",
		state, len(r.Records), r.TotalDelta.String(), r.TotalEntitlement.String())
}

// Run executes aggregation, entitlement, matching, delta reconciliation,
// and non-qualifying detection in order. It never returns an error: fetch
// failures degrade the result and are recorded in Warnings and Metadata.
func (p *Pipeline) Run(ctx context.Context) *Result {
	result := &Result{
		Metadata: ResultMetadata{StartTime: utc.Now(), TransfersOK: true},
	}

	// Stage 1: registry aggregation.
	holdings, registryStatus := NewAggregator(p.segments, p.cfg, p.logger).AggregateHoldings(ctx)
	result.Metadata.Registry = registryStatus
	result.Metadata.Stats.SegmentsFetched = registryStatus.Fetched
	result.Metadata.Stats.OwnersDiscovered = len(holdings)
	if !registryStatus.Complete {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"registry fetch incomplete: %d of %d segments", registryStatus.Fetched, registryStatus.Expected))
	}

	// Stage 2: entitlements.
	records := CalculateEntitlements(holdings, p.cfg.Rate)

	// Single shared transfer fetch for stages 3 and 5.
	events, err := p.transfers.Transfers(ctx)
	if err != nil {
		// Treat a failed fetch as "no transfers observed". Every received
		// amount stays zero and the full entitlement shows up as delta,
		// which over-reports rather than hiding an unpaid owner.
		p.logger.Error().Err(err).
			Str("distributor", p.cfg.Distributor).
			Uint64("asset_id", p.cfg.AssetID).
			Msg("transfer history fetch failed, auditing against zero received")
		result.Metadata.TransfersOK = false
		result.Warnings = append(result.Warnings, "transfer history unavailable: all received amounts assumed zero")
		events = nil
	}
	result.Metadata.Stats.TransfersFetched = len(events)

	// Stage 3: match transfers to owners.
	matched, skipped := MatchTransfers(records, events, p.cfg.Distributor, p.cfg.AssetDecimals)
	result.Metadata.Stats.TransfersMatched = matched
	result.Metadata.Stats.TransfersSkipped = skipped

	// Stage 4: deltas and totals. Entitlement and received totals are
	// taken before filtering so degraded runs still report full exposure.
	result.TotalEntitlement = SumEntitlements(records)
	result.TotalReceived = SumReceived(records)
	ComputeDeltas(records)
	outstanding := FilterZeroDeltas(records, p.cfg.ZeroTolerance)
	result.TotalDelta = SumDeltas(outstanding)
	result.Metadata.Stats.OutstandingOwners = len(outstanding)

	// Stage 5: transfers to addresses outside the qualifying set.
	basis := records
	if p.cfg.NonQualifyingBasis == BasisOutstanding {
		basis = outstanding
	}
	known := make(map[string]struct{}, len(basis))
	for address := range basis {
		known[address] = struct{}{}
	}
	result.NonQualifying = FindNonQualifying(events, known)

	result.Records = sortedRecords(outstanding)
	result.Metadata.EndTime = utc.Now()
	result.Metadata.Duration = result.Metadata.EndTime.Sub(result.Metadata.StartTime)

	p.logger.Info().
		Int("owners", len(holdings)).
		Int("outstanding", len(outstanding)).
		Int("non_qualifying", len(result.NonQualifying)).
		Str("total_delta", result.TotalDelta.String()).
		Dur("duration", result.Metadata.Duration).
		Msg("reconciliation finished")

	return result
}

// sortedRecords flattens a record map into a slice ordered by address.
func sortedRecords(records OwnerRecords) []OwnerRecord {
	out := make([]OwnerRecord, 0, len(records))
	for _, record := range records {
		out = append(out, *record)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address < out[j].Address
	})
	return out
}
