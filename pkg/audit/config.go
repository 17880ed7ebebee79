package audit

import (
	"github.com/shopspring/decimal"

	"github.com/nfdtools/dropaudit/pkg/errors"
)

// Basis selects which address set counts as "qualifying" when classifying
// transfers in the non-qualifying report.
type Basis string

const (
	// BasisOwners uses the full post-blacklist registry owner set.
	BasisOwners Basis = "owners"

	// BasisOutstanding uses only owners that survived zero-delta filtering.
	BasisOutstanding Basis = "outstanding"
)

// Config carries every constant the pipeline depends on. It is immutable
// once handed to New; tests supply alternate values instead of patching
// package state.
type Config struct {
	// ParentAppID is the registry root under which segments are listed.
	ParentAppID string

	// Distributor is the address all payouts are expected to come from.
	Distributor string

	// AssetID identifies the distributed asset on the ledger.
	AssetID uint64

	// AssetDecimals converts base units to decimal units (10^-AssetDecimals).
	AssetDecimals int32

	// Rate is the entitlement per owned segment, in decimal units.
	Rate decimal.Decimal

	// Blacklist addresses are dropped during aggregation and never appear
	// in any downstream mapping or sum.
	Blacklist []string

	// PageSize is the registry search page size.
	PageSize int

	// ZeroTolerance treats |delta| below it as exactly reconciled.
	// Deliberately far tighter than any currency rounding.
	ZeroTolerance decimal.Decimal

	// NonQualifyingBasis picks the known-address set for the
	// non-qualifying transfer report.
	NonQualifyingBasis Basis
}

// DefaultConfig returns the production constants for the Barb distribution
// audit over NFD segments.
func DefaultConfig() Config {
	return Config{
		ParentAppID:        "1282363795",
		Distributor:        "RPC35543V7YH6WTWYWBKIYITLYG2DT3BZD6WEZFR4TXZY3EGA6CKRZKZN4",
		AssetID:            1285225688,
		AssetDecimals:      6,
		Rate:               decimal.RequireFromString("45745.65416"),
		Blacklist:          []string{"RPC35543V7YH6WTWYWBKIYITLYG2DT3BZD6WEZFR4TXZY3EGA6CKRZKZN4"},
		PageSize:           200,
		ZeroTolerance:      decimal.New(1, -9),
		NonQualifyingBasis: BasisOwners,
	}
}

// Validate checks that the configuration is usable for a run.
func (c Config) Validate() error {
	if c.ParentAppID == "" {
		return errors.NewValidationError("parent-app-id", c.ParentAppID, "registry root identifier is required")
	}
	if c.Distributor == "" {
		return errors.NewValidationError("distributor", c.Distributor, "distributor address is required")
	}
	if c.AssetID == 0 {
		return errors.NewValidationError("asset-id", c.AssetID, "asset identifier is required")
	}
	if c.AssetDecimals < 0 {
		return errors.NewValidationError("asset-decimals", c.AssetDecimals, "decimals must not be negative")
	}
	if c.Rate.LessThanOrEqual(decimal.Zero) {
		return errors.NewValidationError("rate", c.Rate.String(), "entitlement rate must be positive")
	}
	if c.PageSize <= 0 {
		return errors.NewValidationError("page-size", c.PageSize, "page size must be positive")
	}
	if c.ZeroTolerance.IsNegative() {
		return errors.NewValidationError("zero-tolerance", c.ZeroTolerance.String(), "tolerance must not be negative")
	}
	switch c.NonQualifyingBasis {
	case BasisOwners, BasisOutstanding:
	default:
		return errors.NewValidationError("nonqualifying-basis", string(c.NonQualifyingBasis), "must be owners or outstanding")
	}
	return nil
}

// blacklisted returns the blacklist as a set for O(1) membership checks.
func (c Config) blacklisted() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Blacklist))
	for _, addr := range c.Blacklist {
		set[addr] = struct{}{}
	}
	return set
}
