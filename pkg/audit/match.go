package audit

// MatchTransfers accumulates the decimal amount each known owner received
// from the distributor. Events from other senders are ignored even though
// the fetch is already scoped to the distributor. Transfers to addresses
// not present in records are skipped here; the non-qualifying report picks
// them up instead.
//
// Returns how many events were credited and how many were skipped.
func MatchTransfers(records OwnerRecords, events []TransferEvent, distributor string, decimals int32) (matched, skipped int) {
	for _, event := range events {
		if event.Sender != distributor {
			skipped++
			continue
		}
		record, known := records[event.Receiver]
		if !known {
			skipped++
			continue
		}
		record.Received = record.Received.Add(event.Amount(decimals))
		matched++
	}
	return matched, skipped
}
