package services

import "fmt"

// ClaimErrorKind categorizes a rejected claim attempt.
type ClaimErrorKind string

const (
	ClaimNotFound           ClaimErrorKind = "not_found"
	ClaimAlreadyClaimed     ClaimErrorKind = "already_claimed"
	ClaimFullyClaimed       ClaimErrorKind = "fully_claimed"
	ClaimOneActiveClaimOnly ClaimErrorKind = "one_active_claim_only"
	ClaimCooldownActive     ClaimErrorKind = "cooldown_active"
)

// ClaimError is the typed failure of AttemptClaim. Every kind is recoverable
// by the user retrying later; the ledger never retries on its own.
type ClaimError struct {
	Kind   ClaimErrorKind
	DropID string
	// ConflictingTitle names the drop holding the user's active claim.
	ConflictingTitle string
	// WaitMinutes is the whole number of minutes left on the cooldown.
	WaitMinutes int
}

func (e *ClaimError) Error() string {
	switch e.Kind {
	case ClaimNotFound:
		return "This drop is no longer available."
	case ClaimAlreadyClaimed:
		return "You already claimed this drop."
	case ClaimFullyClaimed:
		return "This drop has been fully claimed."
	case ClaimOneActiveClaimOnly:
		return fmt.Sprintf("You already have an active claim on %q. Redeem it or wait for it to expire.", e.ConflictingTitle)
	case ClaimCooldownActive:
		return fmt.Sprintf("You can claim a drop from another vendor in %d minute%s.", e.WaitMinutes, plural(e.WaitMinutes))
	default:
		return "claim rejected: " + string(e.Kind)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
