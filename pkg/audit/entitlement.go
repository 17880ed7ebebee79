package audit

import "github.com/shopspring/decimal"

// CalculateEntitlements converts holding counts into audit rows with the
// entitlement each owner should have received. Every holdings key yields
// exactly one record; Received and Delta start at zero.
func CalculateEntitlements(holdings Holdings, rate decimal.Decimal) OwnerRecords {
	records := make(OwnerRecords, len(holdings))
	for address, count := range holdings {
		records[address] = &OwnerRecord{
			Address:     address,
			Count:       count,
			Entitlement: rate.Mul(decimal.NewFromInt(int64(count))),
		}
	}
	return records
}
