package market

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tradeforge/settlement-go/crypto"
)

// Account is a test identity: a fresh secp256k1 key pair.
type Account struct {
	Signer *crypto.InMemorySecp256k1Signer
	Addr   common.Address
}

func NewAccount(t *testing.T) *Account {
	t.Helper()
	signer, err := crypto.NewInMemorySecp256k1Signer()
	if err != nil {
		t.Fatal("failed to generate signer:", err)
	}
	return &Account{Signer: signer, Addr: signer.Address()}
}
