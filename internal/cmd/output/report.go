// Package output renders audit results as tables, CSV, JSON, YAML, or
// markdown.
package output

import (
	"github.com/agentstation/utc"

	"github.com/nfdtools/dropaudit/pkg/audit"
)

// Report is the serializable form of an audit result. Amounts are
// pre-rendered decimal strings so every output format shows identical
// values.
type Report struct {
	GeneratedAt utc.Time      `json:"generated_at" yaml:"generated_at"`
	Complete    bool          `json:"complete" yaml:"complete"`
	Warnings    []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Owners      []OwnerRow    `json:"owners" yaml:"owners"`
	Totals      Totals        `json:"totals" yaml:"totals"`
	NonQualify  []TransferRow `json:"non_qualifying,omitempty" yaml:"non_qualifying,omitempty"`
}

// OwnerRow is one reconciled owner with an outstanding delta.
type OwnerRow struct {
	Address     string `json:"address" yaml:"address"`
	Count       int    `json:"count" yaml:"count"`
	Entitlement string `json:"entitlement" yaml:"entitlement"`
	Received    string `json:"received" yaml:"received"`
	Delta       string `json:"delta" yaml:"delta"`
}

// Totals aggregates the run.
type Totals struct {
	Entitlement string `json:"entitlement" yaml:"entitlement"`
	Received    string `json:"received" yaml:"received"`
	Delta       string `json:"delta" yaml:"delta"`
	Owners      int    `json:"owners" yaml:"owners"`
	Outstanding int    `json:"outstanding" yaml:"outstanding"`
}

// TransferRow is one transfer to an address outside the registry.
type TransferRow struct {
	TxID     string `json:"tx_id" yaml:"tx_id"`
	Receiver string `json:"receiver" yaml:"receiver"`
	Amount   string `json:"amount" yaml:"amount"`
	Round    uint64 `json:"round" yaml:"round"`
}

// NewReport flattens an audit result for rendering. decimals is the asset
// precision used to render non-qualifying transfer amounts.
func NewReport(result *audit.Result, decimals int32) *Report {
	report := &Report{
		GeneratedAt: result.Metadata.EndTime,
		Complete:    result.IsComplete(),
		Warnings:    result.Warnings,
		Owners:      make([]OwnerRow, 0, len(result.Records)),
		Totals: Totals{
			Entitlement: result.TotalEntitlement.String(),
			Received:    result.TotalReceived.String(),
			Delta:       result.TotalDelta.String(),
			Owners:      result.Metadata.Stats.OwnersDiscovered,
			Outstanding: result.Metadata.Stats.OutstandingOwners,
		},
	}

	for _, record := range result.Records {
		report.Owners = append(report.Owners, OwnerRow{
			Address:     record.Address,
			Count:       record.Count,
			Entitlement: record.Entitlement.String(),
			Received:    record.Received.String(),
			Delta:       record.Delta.String(),
		})
	}

	for _, event := range result.NonQualifying {
		report.NonQualify = append(report.NonQualify, TransferRow{
			TxID:     event.TxID,
			Receiver: event.Receiver,
			Amount:   event.Amount(decimals).String(),
			Round:    event.Round,
		})
	}

	return report
}

// ownerColumns are the audit table columns, in report order.
var ownerColumns = []string{"address", "count", "entitlement", "received", "delta"}

// transferColumns are the non-qualifying table columns.
var transferColumns = []string{"tx_id", "receiver", "amount", "round"}

func (r *OwnerRow) values() []string {
	return []string{r.Address, itoa(r.Count), r.Entitlement, r.Received, r.Delta}
}

func (r *TransferRow) values() []string {
	return []string{r.TxID, r.Receiver, r.Amount, utoa(r.Round)}
}
