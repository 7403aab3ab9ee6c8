package donation

import (
	"errors"
	"fmt"

	"github.com/spacefund-io/spacefund/internal/ledger"
	"github.com/spacefund-io/spacefund/internal/token"
)

// Donation error taxonomy. Every failure aborts the whole request with
// zero side effects; callers resubmit, nothing retries internally.
var (
	// ErrInsufficientFunds: the contributor cannot cover the transfer
	// or a provisioning deposit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnauthorizedSigner: the request signature, nonce, or the mint
	// authority derivation does not check out.
	ErrUnauthorizedSigner = errors.New("unauthorized signer")

	// ErrProvisioningConflict: an account at a derived address exists
	// with metadata that does not match this deployment. A matching
	// account is idempotent success, never an error.
	ErrProvisioningConflict = errors.New("provisioning conflict")

	// ErrArithmeticOverflow: a conversion, supply, or balance update
	// would overflow.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrExternalLedger: a substrate fault, propagated verbatim.
	ErrExternalLedger = errors.New("external ledger failure")

	// ErrBelowMinimum: the deployment enforces a donation floor and the
	// amount is under it. Disabled (floor 0) by default.
	ErrBelowMinimum = errors.New("donation below deployment minimum")
)

// categorize maps substrate errors onto the donation taxonomy, keeping
// the original error in the chain.
func categorize(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrUnauthorizedSigner),
		errors.Is(err, ErrProvisioningConflict),
		errors.Is(err, ErrArithmeticOverflow),
		errors.Is(err, ErrBelowMinimum):
		return err
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrAccountNotFound):
		// An absent contributor account means no funds to move.
		return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	case errors.Is(err, ledger.ErrAccountExists):
		// Something already occupies a derived address without a
		// matching record: a squatted account.
		return fmt.Errorf("%w: %w", ErrProvisioningConflict, err)
	case errors.Is(err, ledger.ErrBadNonce):
		return fmt.Errorf("%w: %w", ErrUnauthorizedSigner, err)
	case errors.Is(err, token.ErrUnauthorizedMint):
		return fmt.Errorf("%w: %w", ErrUnauthorizedSigner, err)
	case errors.Is(err, ledger.ErrBalanceOverflow),
		errors.Is(err, token.ErrSupplyOverflow),
		errors.Is(err, token.ErrBalanceOverflow):
		return fmt.Errorf("%w: %w", ErrArithmeticOverflow, err)
	default:
		return fmt.Errorf("%w: %w", ErrExternalLedger, err)
	}
}
