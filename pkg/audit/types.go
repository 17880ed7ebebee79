// Package audit implements the distribution reconciliation pipeline: it
// aggregates segment ownership from the name registry, computes per-owner
// entitlements, matches them against the distributor's on-ledger transfer
// history, and reports the per-address delta plus transfers that went to
// addresses outside the registry.
package audit

import (
	"context"

	"github.com/shopspring/decimal"
)

// Segment is one name-registration record fetched from the registry.
// Only the owner address matters to the pipeline; the rest is carried for
// diagnostics.
type Segment struct {
	Name  string
	Owner string
	AppID int64
}

// Holdings maps an owner address to the number of segments it owns.
// Blacklisted addresses never appear as keys and counts are always >= 1.
type Holdings map[string]int

// OwnerRecord is the accumulating audit row for one registry owner.
type OwnerRecord struct {
	Address     string
	Count       int
	Entitlement decimal.Decimal
	Received    decimal.Decimal
	Delta       decimal.Decimal
}

// OwnerRecords maps an owner address to its audit row. Keys originate from
// holdings aggregation only; the transfer matcher never inserts new ones.
type OwnerRecords map[string]*OwnerRecord

// TransferEvent is one asset transfer observed on the ledger.
// RawAmount is in base units (smallest indivisible unit of the asset).
type TransferEvent struct {
	TxID      string
	Sender    string
	Receiver  string
	RawAmount uint64
	Round     uint64
}

// Amount converts the raw base-unit amount to decimal units.
func (e TransferEvent) Amount(decimals int32) decimal.Decimal {
	return decimal.New(int64(e.RawAmount), -decimals)
}

// FetchStatus reports how much of a best-effort fetch actually arrived.
// A failed page request leaves Complete false and Err set while the records
// fetched before the failure remain usable.
type FetchStatus struct {
	Complete bool
	Fetched  int
	Expected int
	Err      error
}

// SegmentSource produces pages of registry segments.
type SegmentSource interface {
	// Page fetches up to limit segments starting at offset, ordered by
	// descending creation time, and returns the server-reported total
	// number of segments under the registry root.
	Page(ctx context.Context, parentAppID string, limit, offset int) ([]Segment, int, error)
}

// TransferSource produces the distributor's outgoing transfer history for
// the audited asset, restricted to positive amounts.
type TransferSource interface {
	Transfers(ctx context.Context) ([]TransferEvent, error)
}
