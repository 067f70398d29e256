package exchange

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tradeforge/settlement-go/cbor"
	"github.com/tradeforge/settlement-go/types"
	"github.com/tradeforge/settlement-go/types/hex"
)

/*
SettlementEvent is the durable outcome record of one settlement call.
Field order and meaning are stable - downstream indexers depend on the
CBOR array layout.
*/
type SettlementEvent struct {
	_               struct{}       `cbor:",toarray"`
	SaleOrderDigest hex.Bytes      `json:"saleOrderDigest"`
	DealDigest      hex.Bytes      `json:"dealDigest"`
	Kind            types.SaleKind `json:"kind"`
	Maker           common.Address `json:"maker"`
	Taker           common.Address `json:"taker"`
	Amount          uint64         `json:"amount"`
	Fee             uint64         `json:"fee"`
	Success         bool           `json:"success"`
}

// Bytes returns the deterministic CBOR encoding of the event, the form
// in which it is handed to indexers.
func (ev *SettlementEvent) Bytes() (cbor.Raw, error) {
	data, err := cbor.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshaling settlement event: %w", err)
	}
	return data, nil
}

// EventSink receives the outcome event of every completed settlement
// call, including soft-failed auction settlements.
type EventSink interface {
	SettlementCompleted(ev *SettlementEvent)
}
