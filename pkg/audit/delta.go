package audit

import "github.com/shopspring/decimal"

// ComputeDeltas sets delta = entitlement - received on every record.
// Deltas are always recomputed from scratch, never adjusted incrementally.
func ComputeDeltas(records OwnerRecords) {
	for _, record := range records {
		record.Delta = record.Entitlement.Sub(record.Received)
	}
}

// FilterZeroDeltas returns the records whose |delta| is at or above the
// tolerance. The tolerance is a near-exact-equality cutoff, not a currency
// rounding rule: an owner paid to the micro-unit disappears from the
// report, one short by a cent stays.
func FilterZeroDeltas(records OwnerRecords, tolerance decimal.Decimal) OwnerRecords {
	outstanding := make(OwnerRecords)
	for address, record := range records {
		if record.Delta.Abs().LessThan(tolerance) {
			continue
		}
		outstanding[address] = record
	}
	return outstanding
}

// SumEntitlements totals the entitlement column.
func SumEntitlements(records OwnerRecords) decimal.Decimal {
	total := decimal.Zero
	for _, record := range records {
		total = total.Add(record.Entitlement)
	}
	return total
}

// SumReceived totals the received column.
func SumReceived(records OwnerRecords) decimal.Decimal {
	total := decimal.Zero
	for _, record := range records {
		total = total.Add(record.Received)
	}
	return total
}

// SumDeltas totals the delta column. Positive means the distributor
// under-paid in aggregate, negative means it over-paid.
func SumDeltas(records OwnerRecords) decimal.Decimal {
	total := decimal.Zero
	for _, record := range records {
		total = total.Add(record.Delta)
	}
	return total
}
