package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"lexseal/pkg/platform/sentinel"
)

const defaultSubmitBuffer = 64

// Submitter serializes ledger submissions through a single writer, the
// off-chain analog of per-signer nonce ordering. Callers block until their
// submission is confirmed, fails permanently, or their context expires;
// an expired wait does NOT cancel the in-flight submission, so callers must
// re-check status rather than blindly resubmit.
type Submitter struct {
	logger *slog.Logger
	inbox  chan *submission

	// retry tuning; transient store failures are retried with exponential
	// backoff, write-once conflicts never are.
	initialInterval time.Duration
	maxElapsed      time.Duration
}

type submission struct {
	apply  func(ctx context.Context) (Receipt, error)
	result chan submissionResult
}

type submissionResult struct {
	receipt Receipt
	err     error
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithRetryWindow bounds the transient-failure retry schedule.
func WithRetryWindow(initial, maxElapsed time.Duration) SubmitterOption {
	return func(s *Submitter) {
		s.initialInterval = initial
		s.maxElapsed = maxElapsed
	}
}

// NewSubmitter creates a submitter. Run must be started for submissions to
// make progress.
func NewSubmitter(logger *slog.Logger, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		logger:          logger,
		inbox:           make(chan *submission, defaultSubmitBuffer),
		initialInterval: 100 * time.Millisecond,
		maxElapsed:      10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run drains the inbox until ctx is cancelled. One writer, in order.
func (s *Submitter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub := <-s.inbox:
			sub.result <- s.execute(ctx, sub)
		}
	}
}

func (s *Submitter) execute(ctx context.Context, sub *submission) submissionResult {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.initialInterval
	policy.MaxElapsedTime = s.maxElapsed

	receipt, err := backoff.RetryWithData(func() (Receipt, error) {
		receipt, err := sub.apply(ctx)
		if err == nil {
			return receipt, nil
		}
		if errors.Is(err, sentinel.ErrConflict) {
			// Permanent: the registry already holds a record. Retrying with
			// identical arguments can only revert again.
			return Receipt{}, backoff.Permanent(err)
		}
		s.logger.WarnContext(ctx, "ledger submission attempt failed, will retry",
			"error", err,
		)
		return Receipt{}, err
	}, backoff.WithContext(policy, ctx))

	if err != nil && !errors.Is(err, sentinel.ErrConflict) {
		err = errors.Join(sentinel.ErrUnavailable, err)
	}
	return submissionResult{receipt: receipt, err: err}
}

// Submit queues apply on the single writer and waits for its outcome.
// Returns sentinel.ErrTimeout if ctx expires before confirmation; the
// submission itself keeps executing.
func (s *Submitter) Submit(ctx context.Context, apply func(ctx context.Context) (Receipt, error)) (Receipt, error) {
	sub := &submission{
		apply:  apply,
		result: make(chan submissionResult, 1),
	}

	select {
	case s.inbox <- sub:
	case <-ctx.Done():
		return Receipt{}, errors.Join(sentinel.ErrTimeout, ctx.Err())
	}

	select {
	case res := <-sub.result:
		return res.receipt, res.err
	case <-ctx.Done():
		return Receipt{}, errors.Join(sentinel.ErrTimeout, ctx.Err())
	}
}
