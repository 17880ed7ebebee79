package audit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFindNonQualifying(t *testing.T) {
	known := map[string]struct{}{"A": {}, "B": {}}
	events := []TransferEvent{
		{TxID: "tx1", Sender: distributor, Receiver: "A", RawAmount: 1},
		{TxID: "tx2", Sender: distributor, Receiver: "STRANGER", RawAmount: 2},
		{TxID: "tx3", Sender: distributor, Receiver: "B", RawAmount: 3},
		{TxID: "tx4", Sender: distributor, Receiver: "OTHER", RawAmount: 4},
	}

	outside := FindNonQualifying(events, known)

	want := []TransferEvent{
		{TxID: "tx2", Sender: distributor, Receiver: "STRANGER", RawAmount: 2},
		{TxID: "tx4", Sender: distributor, Receiver: "OTHER", RawAmount: 4},
	}
	if diff := cmp.Diff(want, outside); diff != "" {
		t.Errorf("non-qualifying transfers mismatch (-want +got):\n%s", diff)
	}
}

func TestFindNonQualifyingAllKnown(t *testing.T) {
	known := map[string]struct{}{"A": {}}
	events := []TransferEvent{{Receiver: "A"}, {Receiver: "A"}}

	assert.Empty(t, FindNonQualifying(events, known))
}

func TestFindNonQualifyingEmptyKnownSet(t *testing.T) {
	events := []TransferEvent{{Receiver: "A"}}

	assert.Len(t, FindNonQualifying(events, map[string]struct{}{}), 1)
}
