/*
Package market provides in-memory implementations of the settlement
engine's collaborators for tests: an item/currency ledger, a
configuration registry, an event recorder and a replay guard.
*/
package market

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tradeforge/settlement-go/exchange"
	"github.com/tradeforge/settlement-go/types"
	"github.com/tradeforge/settlement-go/util"
)

type itemKey struct {
	ledger  common.Address
	tokenID types.TokenID
}

// Ledger is an in-memory exchange.Ledger. Every transfer is
// all-or-nothing: balances are checked before any state is changed.
type Ledger struct {
	mu     sync.Mutex
	native map[common.Address]uint64
	tokens map[common.Address]map[common.Address]uint64
	owners map[itemKey]common.Address
	units  map[itemKey]map[common.Address]uint64
}

func NewLedger() *Ledger {
	return &Ledger{
		native: map[common.Address]uint64{},
		tokens: map[common.Address]map[common.Address]uint64{},
		owners: map[itemKey]common.Address{},
		units:  map[itemKey]map[common.Address]uint64{},
	}
}

func (l *Ledger) SetNativeBalance(addr common.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.native[addr] = amount
}

func (l *Ledger) SetTokenBalance(token, addr common.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tokens[token] == nil {
		l.tokens[token] = map[common.Address]uint64{}
	}
	l.tokens[token][addr] = amount
}

func (l *Ledger) SetOwner(ledger common.Address, tokenID types.TokenID, owner common.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.owners[itemKey{ledger, tokenID}] = owner
}

func (l *Ledger) SetUnits(ledger common.Address, tokenID types.TokenID, holder common.Address, qty uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := itemKey{ledger, tokenID}
	if l.units[key] == nil {
		l.units[key] = map[common.Address]uint64{}
	}
	l.units[key][holder] = qty
}

func (l *Ledger) OwnerOf(_ context.Context, ledger common.Address, tokenID types.TokenID) (common.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owners[itemKey{ledger, tokenID}], nil
}

func (l *Ledger) UnitBalance(_ context.Context, ledger common.Address, tokenID types.TokenID, holder common.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.units[itemKey{ledger, tokenID}][holder], nil
}

func (l *Ledger) NativeBalance(_ context.Context, addr common.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.native[addr], nil
}

func (l *Ledger) TokenBalance(_ context.Context, token, addr common.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tokens[token][addr], nil
}

func (l *Ledger) TransferAsset(_ context.Context, ledger common.Address, tokenID types.TokenID, kind types.AssetKind, from, to common.Address, qty uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := itemKey{ledger, tokenID}
	switch kind {
	case types.AssetUnique:
		if l.owners[key] != from {
			return fmt.Errorf("item %s/%s is not owned by %s", ledger, tokenID, from)
		}
		l.owners[key] = to
	case types.AssetSemiFungible:
		held := l.units[key][from]
		if held < qty {
			return fmt.Errorf("%s holds %d units of %s/%s, need %d", from, held, ledger, tokenID, qty)
		}
		l.units[key][from] = held - qty
		l.units[key][to] += qty
	default:
		return fmt.Errorf("invalid asset kind %d", kind)
	}
	return nil
}

func (l *Ledger) PayNative(_ context.Context, to common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	sum, ok := util.SafeAdd(l.native[to], amount)
	if !ok {
		return fmt.Errorf("native balance of %s overflows", to)
	}
	l.native[to] = sum
	return nil
}

func (l *Ledger) TransferToken(_ context.Context, token, from, to common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	held := l.tokens[token][from]
	if held < amount {
		return fmt.Errorf("%s holds %d of token %s, need %d", from, held, token, amount)
	}
	if l.tokens[token] == nil {
		l.tokens[token] = map[common.Address]uint64{}
	}
	l.tokens[token][from] = held - amount
	l.tokens[token][to] += amount
	return nil
}

// MintCall records one Registry.Mint invocation.
type MintCall struct {
	To      common.Address
	Ledger  common.Address
	TokenID types.TokenID
	Qty     uint64
}

// Registry is an in-memory exchange.Registry. Mint creates items on the
// attached Ledger and records the call for assertions.
type Registry struct {
	mu          sync.Mutex
	authorities map[common.Address]bool
	payTokens   map[common.Address]bool

	PlatformRateBps uint64
	CapRateBps      uint64
	Payout          common.Address

	ledger    *Ledger
	MintCalls []MintCall
}

func NewRegistry(ledger *Ledger) *Registry {
	return &Registry{
		authorities: map[common.Address]bool{},
		payTokens:   map[common.Address]bool{},
		ledger:      ledger,
	}
}

func (r *Registry) AddAuthority(addr common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authorities[addr] = true
}

func (r *Registry) AllowPaymentToken(token common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payTokens[token] = true
}

func (r *Registry) IsSettlementAuthority(_ context.Context, addr common.Address) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.authorities[addr], nil
}

func (r *Registry) IsPaymentTokenAllowed(_ context.Context, token common.Address) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payTokens[token], nil
}

func (r *Registry) PlatformFeeRateBps(context.Context) (uint64, error) {
	return r.PlatformRateBps, nil
}

func (r *Registry) MaxFeeRateBps(context.Context) (uint64, error) {
	return r.CapRateBps, nil
}

func (r *Registry) PlatformPayout(context.Context) (common.Address, error) {
	return r.Payout, nil
}

func (r *Registry) Mint(_ context.Context, to, ledger common.Address, tokenID types.TokenID, qty uint64) error {
	r.mu.Lock()
	r.MintCalls = append(r.MintCalls, MintCall{To: to, Ledger: ledger, TokenID: tokenID, Qty: qty})
	r.mu.Unlock()
	if r.ledger == nil {
		return nil
	}
	for i := uint64(0); i < qty; i++ {
		if err := r.ledger.addUnit(ledger, tokenID, to); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) addUnit(ledger common.Address, tokenID types.TokenID, to common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := itemKey{ledger, tokenID}
	if l.units[key] == nil {
		l.units[key] = map[common.Address]uint64{}
	}
	l.units[key][to]++
	// a freshly minted unique item also gets an owner record
	if l.owners[key] == (common.Address{}) {
		l.owners[key] = to
	}
	return nil
}

// EventRecorder collects settlement outcome events.
type EventRecorder struct {
	mu     sync.Mutex
	Events []*exchange.SettlementEvent
}

func (r *EventRecorder) SettlementCompleted(ev *exchange.SettlementEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
}

// ReplayGuard is an in-memory exchange.ReplayGuard.
type ReplayGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func NewReplayGuard() *ReplayGuard {
	return &ReplayGuard{seen: map[string]bool{}}
}

func (g *ReplayGuard) Seen(_ context.Context, dealDigest []byte) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seen[string(dealDigest)], nil
}

func (g *ReplayGuard) Record(_ context.Context, dealDigest []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen[string(dealDigest)] = true
	return nil
}
