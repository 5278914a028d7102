package canvass

import "errors"

var (
	// ErrIndexOutOfRange indicates a roster position that does not exist.
	ErrIndexOutOfRange = errors.New("roster index out of range")

	// ErrSignerMismatch indicates a signer name that differs from the roster entry.
	ErrSignerMismatch = errors.New("signer does not match roster entry")

	// ErrUnknownDivision indicates a division with no assignment in the session.
	ErrUnknownDivision = errors.New("unknown division")

	// ErrUnknownSupplier indicates a quote lookup for a supplier not in the ledger.
	ErrUnknownSupplier = errors.New("unknown supplier")

	// ErrUnknownItem indicates a price for a line item the purchase request does not contain.
	ErrUnknownItem = errors.New("unknown line item")

	// ErrStageIncomplete indicates the current stage's completion predicate does not hold.
	ErrStageIncomplete = errors.New("stage is not complete")

	// ErrStageNotReached indicates navigation to a stage the session has not reached yet.
	ErrStageNotReached = errors.New("stage not reached")

	// ErrSessionClosed indicates an operation on a session whose abstract is fully signed.
	ErrSessionClosed = errors.New("canvass session is closed")

	// ErrSessionExists indicates a second session for the same purchase request.
	ErrSessionExists = errors.New("canvass session already exists")

	// ErrSessionNotFound indicates no open session for the purchase request.
	ErrSessionNotFound = errors.New("canvass session not found")

	// ErrRequestNotApproved indicates a purchase request that cannot enter canvassing.
	ErrRequestNotApproved = errors.New("purchase request is not approved")
)
