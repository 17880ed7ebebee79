package audit

// FindNonQualifying returns the transfers whose receiver is not in the
// known-address set, preserving ledger order. These are payouts that left
// the distributor but never reached a registry owner.
func FindNonQualifying(events []TransferEvent, known map[string]struct{}) []TransferEvent {
	var outside []TransferEvent
	for _, event := range events {
		if _, ok := known[event.Receiver]; ok {
			continue
		}
		outside = append(outside, event)
	}
	return outside
}
