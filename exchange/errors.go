package exchange

import "errors"

// Settlement failure kinds. All of them abort the whole call - the only
// non-aborting condition is the auction balance shortfall which is reported
// as a successful Settlement with Success=false.
var (
	ErrAuthorizationDenied     = errors.New("caller is not authorized to settle this order")
	ErrHashMismatch            = errors.New("recomputed digest does not match the claimed digest")
	ErrSignatureInvalid        = errors.New("recovered signer does not match the claimed identity")
	ErrUnsupportedDenomination = errors.New("payment token is not registered")
	ErrFeeLimitExceeded        = errors.New("total fee exceeds the configured maximum")
	ErrInsufficientValue       = errors.New("attached value is below the agreed amount")
	ErrMissingPayoutAddress    = errors.New("non-zero fee without a payout address")
	ErrExpired                 = errors.New("deal order deadline has passed")
	ErrAlreadySettled          = errors.New("deal order has already been settled")
)
