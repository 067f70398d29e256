package exchange

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tradeforge/settlement-go/crypto"
	"github.com/tradeforge/settlement-go/types"
	"github.com/tradeforge/settlement-go/types/hex"
)

type (
	/*
		SettlementCall is one self-contained settlement request: the full
		asset descriptor, the maker's listing and the authorized taker
		commitment, plus the identity invoking the call and the native
		value attached to it.
	*/
	SettlementCall struct {
		Caller common.Address
		Value  uint64 // native currency attached to the call
		Asset  *Asset
		Order  *SaleOrder
		Deal   *DealOrder
	}

	// Settlement is the outcome of a settlement call. Success is false
	// only for the auction soft-fail path; every other failure is an
	// error and nothing is settled.
	Settlement struct {
		DealDigest hex.Bytes
		Fees       FeeBreakdown
		Success    bool
	}

	/*
		Settler drives a settlement call through caller authorization, the
		chained signature verification, the auction balance precondition,
		fee calculation and the transfer legs. It keeps no state between
		calls - every call is a pure function of its input and the current
		Registry/Ledger reads.
	*/
	Settler struct {
		domain   Domain
		registry Registry
		ledger   Ledger
		events   EventSink
		guard    ReplayGuard
		now      func() uint64
	}

	Option func(*Settler)
)

// WithEventSink attaches a sink receiving the outcome event of every
// completed settlement call.
func WithEventSink(sink EventSink) Option {
	return func(s *Settler) { s.events = sink }
}

// WithReplayGuard attaches a guard recording consumed deal digests,
// making each deal order settleable at most once.
func WithReplayGuard(guard ReplayGuard) Option {
	return func(s *Settler) { s.guard = guard }
}

// WithClock overrides the time source used for deadline checks.
func WithClock(now func() uint64) Option {
	return func(s *Settler) { s.now = now }
}

func NewSettler(domain Domain, registry Registry, ledger Ledger, opts ...Option) (*Settler, error) {
	if registry == nil {
		return nil, errors.New("registry is nil")
	}
	if ledger == nil {
		return nil, errors.New("ledger is nil")
	}
	s := &Settler{
		domain:   domain,
		registry: registry,
		ledger:   ledger,
		now:      func() uint64 { return uint64(time.Now().Unix()) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Domain returns the typed data domain of this engine instance.
func (s *Settler) Domain() Domain {
	return s.domain
}

/*
ReplaceRegistry repoints the registry handle of the settler. Only an
identity the current registry recognizes as a settlement authority may do
so; this is the explicit "who may repoint this handle" check for the
mutual engine/registry reference.
*/
func (s *Settler) ReplaceRegistry(ctx context.Context, caller common.Address, next Registry) error {
	if next == nil {
		return errors.New("registry is nil")
	}
	ok, err := s.registry.IsSettlementAuthority(ctx, caller)
	if err != nil {
		return fmt.Errorf("querying authority roster: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s may not replace the registry", ErrAuthorizationDenied, caller)
	}
	s.registry = next
	return nil
}

// QuoteFees computes the fee breakdown for an amount and royalty rate
// using the currently configured platform rate, payout destination and cap.
func (s *Settler) QuoteFees(ctx context.Context, amount, royaltyRateBps uint64) (FeeBreakdown, error) {
	fees, _, err := s.settlementFees(ctx, amount, royaltyRateBps)
	return fees, err
}

/*
Settle verifies and executes one settlement call.

The call aborts (returns an error, nothing settled) on any authorization,
hash, signature, denomination, fee or transfer failure. The single
non-aborting failure is the auction balance precondition: a shortfall
completes the call with Success=false, zero fee and no transfers, so the
authority's attempt is recorded instead of wasted.
*/
func (s *Settler) Settle(ctx context.Context, call *SettlementCall) (*Settlement, error) {
	if err := validateCall(call); err != nil {
		return nil, err
	}
	order, deal := call.Order, call.Deal

	// caller authorization gate, evaluated before any hashing work
	if err := s.checkCaller(ctx, call); err != nil {
		return nil, err
	}

	if deal.Deadline != 0 && s.now() > deal.Deadline {
		return nil, fmt.Errorf("%w: deadline %d", ErrExpired, deal.Deadline)
	}

	if !order.IsNativePayment() {
		allowed, err := s.registry.IsPaymentTokenAllowed(ctx, order.PayToken)
		if err != nil {
			return nil, fmt.Errorf("querying payment token allowlist: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedDenomination, order.PayToken)
		}
	}

	orderDigest, dealDigest, err := s.verifyChain(ctx, call)
	if err != nil {
		return nil, err
	}

	if s.guard != nil {
		seen, err := s.guard.Seen(ctx, dealDigest)
		if err != nil {
			return nil, fmt.Errorf("querying replay guard: %w", err)
		}
		if seen {
			return nil, fmt.Errorf("%w: deal %s", ErrAlreadySettled, dealDigest)
		}
	}

	ev := &SettlementEvent{
		SaleOrderDigest: orderDigest,
		DealDigest:      dealDigest,
		Kind:            order.Kind,
		Maker:           order.Maker,
		Taker:           deal.Taker,
		Amount:          deal.Amount,
	}

	if order.Kind == types.SaleKindAuction {
		ok, err := s.checkPreconditions(ctx, call)
		if err != nil {
			return nil, err
		}
		if !ok {
			// soft-fail: record the outcome, transfer nothing
			s.emit(ev)
			return &Settlement{DealDigest: dealDigest}, nil
		}
	}

	fees, payout, err := s.settlementFees(ctx, deal.Amount, order.RoyaltyRateBps)
	if err != nil {
		return nil, err
	}

	if err := s.executeTransfers(ctx, call, fees, payout); err != nil {
		return nil, err
	}

	if s.guard != nil {
		if err := s.guard.Record(ctx, dealDigest); err != nil {
			return nil, fmt.Errorf("recording settled deal: %w", err)
		}
	}

	ev.Fee = fees.Total
	ev.Success = true
	s.emit(ev)
	return &Settlement{DealDigest: dealDigest, Fees: fees, Success: true}, nil
}

func validateCall(call *SettlementCall) error {
	if call == nil {
		return errors.New("settlement call is nil")
	}
	if err := call.Asset.IsValid(); err != nil {
		return fmt.Errorf("invalid asset: %w", err)
	}
	if call.Order == nil {
		return errors.New("sale order is nil")
	}
	if err := call.Order.SaleTerms.IsValid(); err != nil {
		return fmt.Errorf("invalid sale order: %w", err)
	}
	if call.Deal == nil {
		return errors.New("deal order is nil")
	}
	if err := call.Deal.DealTerms.IsValid(); err != nil {
		return fmt.Errorf("invalid deal order: %w", err)
	}
	return nil
}

// checkCaller enforces the per sale kind settlement policy: auctions are
// resolved by a registered authority, market sales by the taker themselves.
func (s *Settler) checkCaller(ctx context.Context, call *SettlementCall) error {
	switch call.Order.Kind {
	case types.SaleKindAuction:
		ok, err := s.registry.IsSettlementAuthority(ctx, call.Caller)
		if err != nil {
			return fmt.Errorf("querying authority roster: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: auction settlement requires a registered authority, got %s", ErrAuthorizationDenied, call.Caller)
		}
	case types.SaleKindMarket:
		if call.Caller != call.Deal.Taker {
			return fmt.Errorf("%w: market settlement must be invoked by the taker %s, got %s", ErrAuthorizationDenied, call.Deal.Taker, call.Caller)
		}
	default:
		return fmt.Errorf("invalid sale kind %d", call.Order.Kind)
	}
	return nil
}

/*
verifyChain recomputes and cross-checks the digest chain
asset -> sale order -> deal order -> authorization. Each link must hold:
the digests embedded downstream equal the recomputed ones and every
recovered signer equals the claimed identity (the authorization signer
must be a currently registered authority). Any failure aborts the call.
*/
func (s *Settler) verifyChain(ctx context.Context, call *SettlementCall) (orderDigest, dealDigest hex.Bytes, err error) {
	order, deal := call.Order, call.Deal

	assetDigest, err := call.Asset.Digest(s.domain)
	if err != nil {
		return nil, nil, err
	}
	if !bytes.Equal(assetDigest, order.AssetDigest) {
		return nil, nil, fmt.Errorf("%w: asset digest %s, sale order references %s", ErrHashMismatch, assetDigest, order.AssetDigest)
	}

	if orderDigest, err = order.Digest(s.domain); err != nil {
		return nil, nil, err
	}
	makerSigner, err := crypto.RecoverAddress(orderDigest, order.Signature)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: sale order: %v", ErrSignatureInvalid, err)
	}
	if makerSigner != order.Maker {
		return nil, nil, fmt.Errorf("%w: sale order signed by %s, claimed maker %s", ErrSignatureInvalid, makerSigner, order.Maker)
	}

	if !bytes.Equal(orderDigest, deal.SaleOrderDigest) {
		return nil, nil, fmt.Errorf("%w: sale order digest %s, deal references %s", ErrHashMismatch, orderDigest, deal.SaleOrderDigest)
	}
	if dealDigest, err = deal.Digest(s.domain); err != nil {
		return nil, nil, err
	}
	takerSigner, err := crypto.RecoverAddress(dealDigest, deal.TakerSignature)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: deal order: %v", ErrSignatureInvalid, err)
	}
	if takerSigner != deal.Taker {
		return nil, nil, fmt.Errorf("%w: deal order signed by %s, claimed taker %s", ErrSignatureInvalid, takerSigner, deal.Taker)
	}

	authDigest, err := deal.AuthDigest(s.domain)
	if err != nil {
		return nil, nil, err
	}
	authSigner, err := crypto.RecoverAddress(authDigest, deal.AuthSignature)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: deal authorization: %v", ErrSignatureInvalid, err)
	}
	isAuthority, err := s.registry.IsSettlementAuthority(ctx, authSigner)
	if err != nil {
		return nil, nil, fmt.Errorf("querying authority roster: %w", err)
	}
	if !isAuthority {
		return nil, nil, fmt.Errorf("%w: deal authorization signed by %s who is not a registered authority", ErrSignatureInvalid, authSigner)
	}
	return orderDigest, dealDigest, nil
}

/*
checkPreconditions re-reads, at execution time, the maker's current item
holding and the taker's current funds. Auction settlements are submitted
by the authority and conditions may have changed since the deal was
authorized (the item sold elsewhere, funds spent); a shortfall is reported
as ok=false rather than as an error.
*/
func (s *Settler) checkPreconditions(ctx context.Context, call *SettlementCall) (bool, error) {
	asset, order, deal := call.Asset, call.Order, call.Deal

	// an item sold before it exists cannot be held by anyone, the
	// holding check applies to already minted items only
	if deal.Minted {
		var holding uint64
		required := order.Quantity
		switch asset.Kind {
		case types.AssetUnique:
			owner, err := s.ledger.OwnerOf(ctx, asset.Ledger, asset.TokenID)
			if err != nil {
				return false, fmt.Errorf("querying item owner: %w", err)
			}
			if owner == order.Maker {
				holding = 1
			}
			required = 1
		case types.AssetSemiFungible:
			var err error
			if holding, err = s.ledger.UnitBalance(ctx, asset.Ledger, asset.TokenID, order.Maker); err != nil {
				return false, fmt.Errorf("querying item balance: %w", err)
			}
		}
		if holding < required {
			return false, nil
		}
	}

	var funds uint64
	var err error
	if order.IsNativePayment() {
		funds, err = s.ledger.NativeBalance(ctx, deal.Taker)
	} else {
		funds, err = s.ledger.TokenBalance(ctx, order.PayToken, deal.Taker)
	}
	if err != nil {
		return false, fmt.Errorf("querying taker funds: %w", err)
	}
	return funds >= deal.Amount, nil
}

func (s *Settler) settlementFees(ctx context.Context, amount, royaltyRateBps uint64) (FeeBreakdown, common.Address, error) {
	platformRate, err := s.registry.PlatformFeeRateBps(ctx)
	if err != nil {
		return FeeBreakdown{}, common.Address{}, fmt.Errorf("querying platform fee rate: %w", err)
	}
	capRate, err := s.registry.MaxFeeRateBps(ctx)
	if err != nil {
		return FeeBreakdown{}, common.Address{}, fmt.Errorf("querying fee cap: %w", err)
	}
	payout, err := s.registry.PlatformPayout(ctx)
	if err != nil {
		return FeeBreakdown{}, common.Address{}, fmt.Errorf("querying platform payout: %w", err)
	}
	fees, err := ComputeFees(amount, royaltyRateBps, platformRate, capRate, payout != common.Address{})
	if err != nil {
		return FeeBreakdown{}, common.Address{}, err
	}
	return fees, payout, nil
}

/*
executeTransfers settles the currency legs (net to maker, platform fee to
the payout destination, royalty to the author - zero amount legs are
skipped) and then moves or mints the item. Native settlements draw from
the value attached to the call, token settlements pull from the taker's
token balance leg by leg.
*/
func (s *Settler) executeTransfers(ctx context.Context, call *SettlementCall, fees FeeBreakdown, payout common.Address) error {
	asset, order, deal := call.Asset, call.Order, call.Deal

	if fees.Platform > 0 && payout == (common.Address{}) {
		return fmt.Errorf("%w: platform fee %d", ErrMissingPayoutAddress, fees.Platform)
	}
	if fees.Royalty > 0 && deal.Author == (common.Address{}) {
		return fmt.Errorf("%w: royalty fee %d", ErrMissingPayoutAddress, fees.Royalty)
	}

	type leg struct {
		to     common.Address
		amount uint64
	}
	legs := []leg{
		{order.Maker, fees.Net},
		{payout, fees.Platform},
		{deal.Author, fees.Royalty},
	}

	if order.IsNativePayment() {
		if call.Value < deal.Amount {
			return fmt.Errorf("%w: attached %d, agreed amount %d", ErrInsufficientValue, call.Value, deal.Amount)
		}
		for _, l := range legs {
			if l.amount == 0 {
				continue
			}
			if err := s.ledger.PayNative(ctx, l.to, l.amount); err != nil {
				return fmt.Errorf("paying %d to %s: %w", l.amount, l.to, err)
			}
		}
	} else {
		for _, l := range legs {
			if l.amount == 0 {
				continue
			}
			if err := s.ledger.TransferToken(ctx, order.PayToken, deal.Taker, l.to, l.amount); err != nil {
				return fmt.Errorf("transferring %d tokens to %s: %w", l.amount, l.to, err)
			}
		}
	}

	if deal.Minted {
		qty := order.Quantity
		if asset.Kind == types.AssetUnique {
			qty = 1
		}
		if err := s.ledger.TransferAsset(ctx, asset.Ledger, asset.TokenID, asset.Kind, order.Maker, deal.Taker, qty); err != nil {
			return fmt.Errorf("transferring item: %w", err)
		}
	} else {
		// lazy creation always mints a single unit, the order quantity is
		// not consulted on this path
		if err := s.registry.Mint(ctx, deal.Taker, asset.Ledger, asset.TokenID, 1); err != nil {
			return fmt.Errorf("minting item: %w", err)
		}
	}
	return nil
}

func (s *Settler) emit(ev *SettlementEvent) {
	if s.events != nil {
		s.events.SettlementCompleted(ev)
	}
}
