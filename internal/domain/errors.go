package domain

import "errors"

var (
	// ErrQuotaExceeded signals a locally enforced quota denial. Non-fatal:
	// the caller skips or defers the action.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrRateLimited signals the remote platform rejected a call for rate
	// reasons. Transient, retried with the long backoff.
	ErrRateLimited = errors.New("rate limited by platform")

	// ErrRejected signals the remote platform rejected the content itself.
	// Permanent: retrying cannot succeed.
	ErrRejected = errors.New("rejected by platform")

	// ErrGenerationFailed signals the text generator could not produce
	// output. The caller falls back to a static template.
	ErrGenerationFailed = errors.New("text generation failed")

	// ErrStorageFailure signals the interaction log could not persist a
	// record. Surfaced immediately: losing the audit trail corrupts quota
	// recovery.
	ErrStorageFailure = errors.New("interaction log storage failure")

	// ErrUnknownCapability signals a quota check against a capability the
	// tracker was not configured with.
	ErrUnknownCapability = errors.New("unknown capability")
)
