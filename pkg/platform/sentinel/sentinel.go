package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Ledger stores and infrastructure
// layers return these (optionally wrapped) so services can translate them
// into domain errors.
//
// These represent factual states about ledger records, not validation
// failures:
// - ErrNotFound: no record under the key (a legitimate, queryable state)
// - ErrConflict: the key already holds a record (write-once violation)
// - ErrUnavailable: backend temporarily unreachable, safe to retry
// - ErrTimeout: submission not confirmed within the deadline
// - ErrClosed: submitter shut down before the submission was accepted
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrTimeout     = errors.New("timeout")
	ErrClosed      = errors.New("closed")
)
