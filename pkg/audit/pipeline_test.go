package audit

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfdtools/dropaudit/pkg/errors"
	"github.com/nfdtools/dropaudit/pkg/logging"
)

// fakeTransferSource returns a frozen event list, counting fetches.
type fakeTransferSource struct {
	events []TransferEvent
	err    error
	calls  int
}

func (f *fakeTransferSource) Transfers(_ context.Context) ([]TransferEvent, error) {
	f.calls++
	return f.events, f.err
}

func pipelineConfig() Config {
	cfg := DefaultConfig()
	cfg.Distributor = distributor
	cfg.Blacklist = []string{distributor}
	cfg.Rate = decimal.NewFromInt(100)
	cfg.AssetDecimals = 6
	return cfg
}

func newTestPipeline(t *testing.T, segments SegmentSource, transfers TransferSource, cfg Config) *Pipeline {
	t.Helper()
	p, err := New(segments, transfers, cfg, WithLogger(&logging.Nop))
	require.NoError(t, err)
	return p
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := pipelineConfig()
	cfg.PageSize = 0

	_, err := New(newFakeSegmentSource(nil), &fakeTransferSource{}, cfg)

	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestRunEndToEnd(t *testing.T) {
	// A owns 2 segments (entitled 200, paid 200 exactly -> filtered out),
	// B owns 1 (entitled 100, paid 40 -> delta 60),
	// STRANGER gets a payout without owning anything.
	segments := newFakeSegmentSource(segmentsOwnedBy("A", "B", "A"))
	transfers := &fakeTransferSource{events: []TransferEvent{
		{TxID: "tx1", Sender: distributor, Receiver: "A", RawAmount: 200_000_000},
		{TxID: "tx2", Sender: distributor, Receiver: "B", RawAmount: 40_000_000},
		{TxID: "tx3", Sender: distributor, Receiver: "STRANGER", RawAmount: 5_000_000},
	}}

	result := newTestPipeline(t, segments, transfers, pipelineConfig()).Run(context.Background())

	require.True(t, result.IsComplete())
	assert.Empty(t, result.Warnings)

	require.Len(t, result.Records, 1)
	got := result.Records[0]
	assert.Equal(t, "B", got.Address)
	assert.Equal(t, 1, got.Count)
	assert.True(t, got.Entitlement.Equal(dec("100")))
	assert.True(t, got.Received.Equal(dec("40")))
	assert.True(t, got.Delta.Equal(dec("60")))

	assert.True(t, result.TotalEntitlement.Equal(dec("300")))
	assert.True(t, result.TotalReceived.Equal(dec("240")))
	assert.True(t, result.TotalDelta.Equal(dec("60")))

	require.Len(t, result.NonQualifying, 1)
	assert.Equal(t, "tx3", result.NonQualifying[0].TxID)

	assert.Equal(t, 1, transfers.calls, "transfer history is fetched once and shared")
	assert.Equal(t, 3, result.Metadata.Stats.SegmentsFetched)
	assert.Equal(t, 2, result.Metadata.Stats.OwnersDiscovered)
	assert.Equal(t, 1, result.Metadata.Stats.OutstandingOwners)
}

func TestRunIdempotentOnFrozenSnapshot(t *testing.T) {
	events := []TransferEvent{
		{TxID: "tx1", Sender: distributor, Receiver: "A", RawAmount: 123_456_789},
		{TxID: "tx2", Sender: distributor, Receiver: "OUT", RawAmount: 1},
	}
	run := func() *Result {
		segments := newFakeSegmentSource(segmentsOwnedBy("A", "B", "C", "B"))
		transfers := &fakeTransferSource{events: events}
		return newTestPipeline(t, segments, transfers, pipelineConfig()).Run(context.Background())
	}

	first, second := run(), run()

	opts := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	if diff := cmp.Diff(first.Records, second.Records, opts); diff != "" {
		t.Errorf("records differ between identical runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.NonQualifying, second.NonQualifying); diff != "" {
		t.Errorf("non-qualifying lists differ (-first +second):\n%s", diff)
	}
	assert.True(t, first.TotalDelta.Equal(second.TotalDelta))
	assert.True(t, first.TotalEntitlement.Equal(second.TotalEntitlement))
	assert.True(t, first.TotalReceived.Equal(second.TotalReceived))
}

func TestRunDegradesWhenTransfersFail(t *testing.T) {
	segments := newFakeSegmentSource(segmentsOwnedBy("A"))
	transfers := &fakeTransferSource{err: errors.NewAPIError("indexer", 503, "down")}

	result := newTestPipeline(t, segments, transfers, pipelineConfig()).Run(context.Background())

	assert.False(t, result.IsComplete())
	assert.False(t, result.Metadata.TransfersOK)
	require.Len(t, result.Warnings, 1)

	// With no observed transfers the whole entitlement surfaces as delta.
	require.Len(t, result.Records, 1)
	assert.True(t, result.Records[0].Delta.Equal(dec("100")))
	assert.True(t, result.TotalReceived.IsZero())
	assert.Empty(t, result.NonQualifying)
}

func TestRunDegradesWhenRegistryPartial(t *testing.T) {
	owners := make([]string, 300)
	for i := range owners {
		owners[i] = "ADDR"
	}
	segments := newFakeSegmentSource(segmentsOwnedBy(owners...))
	segments.failAt = 200
	transfers := &fakeTransferSource{}

	result := newTestPipeline(t, segments, transfers, pipelineConfig()).Run(context.Background())

	assert.False(t, result.IsComplete())
	assert.False(t, result.Metadata.Registry.Complete)
	assert.Equal(t, 200, result.Metadata.Registry.Fetched)
	assert.NotEmpty(t, result.Warnings)
	// The partial registry still produces an audit.
	require.Len(t, result.Records, 1)
	assert.Equal(t, 200, result.Records[0].Count)
}

func TestRunBasisOutstanding(t *testing.T) {
	// A is fully paid, so under the outstanding basis a later payout to A
	// counts as non-qualifying; under the owners basis it does not.
	segments := func() *fakeSegmentSource { return newFakeSegmentSource(segmentsOwnedBy("A", "B")) }
	events := []TransferEvent{
		{TxID: "pay-a", Sender: distributor, Receiver: "A", RawAmount: 100_000_000},
	}

	ownersCfg := pipelineConfig()
	result := newTestPipeline(t, segments(), &fakeTransferSource{events: events}, ownersCfg).Run(context.Background())
	assert.Empty(t, result.NonQualifying)

	outstandingCfg := pipelineConfig()
	outstandingCfg.NonQualifyingBasis = BasisOutstanding
	result = newTestPipeline(t, segments(), &fakeTransferSource{events: events}, outstandingCfg).Run(context.Background())
	require.Len(t, result.NonQualifying, 1)
	assert.Equal(t, "pay-a", result.NonQualifying[0].TxID)
}

func TestResultSummary(t *testing.T) {
	segments := newFakeSegmentSource(segmentsOwnedBy("A"))
	transfers := &fakeTransferSource{}

	result := newTestPipeline(t, segments, transfers, pipelineConfig()).Run(context.Background())

	assert.Contains(t, result.Summary(), "audit complete")
	assert.Contains(t, result.Summary(), "1 owners outstanding")
}
