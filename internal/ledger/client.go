package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger/metrics"
	dErrors "lexseal/pkg/domain-errors"
	"lexseal/pkg/platform/sentinel"
)

const (
	registryNotary  = "notary"
	registryCommits = "commit_store"
	registryProject = "project_registry"
)

// ReadCache caches immutable notarization records. Caching is safe because
// records are write-once: a cached record can never go stale. Negative
// results are never cached.
type ReadCache interface {
	GetNotarization(ctx context.Context, runID Key) (NotarizationRecord, bool)
	PutNotarization(ctx context.Context, rec NotarizationRecord)
}

// Client is the single entry point for publishing to and reading from the
// three registries. Writes go through the Submitter; reads hit the store
// (optionally fronted by a cache) directly.
type Client struct {
	store     Store
	submitter *Submitter
	publisher string
	logger    *slog.Logger
	events    Sink
	cache     ReadCache
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEvents sets the confirmed-write event sink.
func WithEvents(sink Sink) ClientOption {
	return func(c *Client) {
		if sink != nil {
			c.events = sink
		}
	}
}

// WithReadCache fronts notarization reads with a cache.
func WithReadCache(cache ReadCache) ClientOption {
	return func(c *Client) { c.cache = cache }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a ledger client writing as the given publisher
// identity.
func NewClient(store Store, submitter *Submitter, publisher string, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		store:     store,
		submitter: submitter,
		publisher: publisher,
		logger:    logger,
		events:    NopSink{},
		tracer:    otel.Tracer("lexseal/ledger"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PublishRoot binds runID to its Merkle root, exactly once. A run that
// already holds a root fails with CodeAlreadyNotarized even for an
// identical root: the registry proves when something was first committed.
func (c *Client) PublishRoot(ctx context.Context, runID Key, root fingerprint.Digest) (Receipt, error) {
	ctx, span := c.tracer.Start(ctx, "ledger.PublishRoot",
		trace.WithAttributes(attribute.String("run_id", runID.Hex())))
	defer span.End()

	// Pre-submission read short-circuits calls destined to revert. This is
	// an optimization; the store's write-once check stays authoritative.
	if _, err := c.store.FindNotarization(ctx, runID); err == nil {
		c.countConflict(registryNotary)
		return Receipt{}, dErrors.Newf(dErrors.CodeAlreadyNotarized, "run %s already notarized", runID.Hex())
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		c.logger.WarnContext(ctx, "pre-submission read failed, submitting anyway",
			"run_id", runID.Hex(),
			"error", err,
		)
	}

	txID := uuid.NewString()
	start := time.Now()
	receipt, err := c.submitter.Submit(ctx, func(ctx context.Context) (Receipt, error) {
		rec, err := c.store.PublishIfAbsent(ctx, NotarizationRecord{
			RunID:     runID,
			Root:      root,
			Publisher: c.publisher,
		})
		if err != nil {
			return Receipt{}, err
		}
		return Receipt{TxID: txID, BlockHeight: rec.BlockHeight, Timestamp: rec.Timestamp}, nil
	})
	if err != nil {
		return Receipt{}, c.classify(ctx, registryNotary, dErrors.CodeAlreadyNotarized, start, err)
	}
	c.confirm(registryNotary, start)

	rec := NotarizationRecord{
		RunID:       runID,
		Root:        root,
		Publisher:   c.publisher,
		BlockHeight: receipt.BlockHeight,
		Timestamp:   receipt.Timestamp,
	}
	if c.cache != nil {
		c.cache.PutNotarization(ctx, rec)
	}
	c.events.Notarized(ctx, NotarizedEvent{
		RunID:       runID,
		Root:        root,
		Publisher:   c.publisher,
		BlockHeight: receipt.BlockHeight,
		Timestamp:   receipt.Timestamp,
	})
	c.countEvent()
	return receipt, nil
}

// GetRoot looks up a notarization. found=false with a nil error means "not
// notarized", a legitimate answer, not a failure.
func (c *Client) GetRoot(ctx context.Context, runID Key) (NotarizationRecord, bool, error) {
	if c.cache != nil {
		if rec, ok := c.cache.GetNotarization(ctx, runID); ok {
			return rec, true, nil
		}
	}
	rec, err := c.store.FindNotarization(ctx, runID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return NotarizationRecord{}, false, nil
		}
		return NotarizationRecord{}, false, dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "notarization lookup failed")
	}
	if c.cache != nil {
		c.cache.PutNotarization(ctx, rec)
	}
	return rec, true, nil
}

// CommitAudit stores an encrypted audit payload, exactly once per commitID.
func (c *Client) CommitAudit(ctx context.Context, commitID Key, labelHash fingerprint.Digest, ciphertext []byte, dataHash fingerprint.Digest) (Receipt, error) {
	ctx, span := c.tracer.Start(ctx, "ledger.CommitAudit",
		trace.WithAttributes(attribute.String("commit_id", commitID.Hex())))
	defer span.End()

	if _, err := c.store.FindCommitMetadata(ctx, commitID); err == nil {
		c.countConflict(registryCommits)
		return Receipt{}, dErrors.Newf(dErrors.CodeAlreadyCommitted, "commit %s already exists", commitID.Hex())
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		c.logger.WarnContext(ctx, "pre-submission read failed, submitting anyway",
			"commit_id", commitID.Hex(),
			"error", err,
		)
	}

	txID := uuid.NewString()
	start := time.Now()
	receipt, err := c.submitter.Submit(ctx, func(ctx context.Context) (Receipt, error) {
		rec, err := c.store.CommitIfAbsent(ctx, AuditCommitRecord{
			CommitID:   commitID,
			LabelHash:  labelHash,
			Ciphertext: ciphertext,
			DataHash:   dataHash,
		})
		if err != nil {
			return Receipt{}, err
		}
		return Receipt{TxID: txID, BlockHeight: rec.BlockHeight, Timestamp: rec.Timestamp}, nil
	})
	if err != nil {
		return Receipt{}, c.classify(ctx, registryCommits, dErrors.CodeAlreadyCommitted, start, err)
	}
	c.confirm(registryCommits, start)

	c.events.Committed(ctx, CommittedEvent{
		CommitID:    commitID,
		LabelHash:   labelHash,
		DataHash:    dataHash,
		BlockHeight: receipt.BlockHeight,
		Timestamp:   receipt.Timestamp,
	})
	c.countEvent()
	return receipt, nil
}

// GetCommit returns the full audit commit record, ciphertext included.
func (c *Client) GetCommit(ctx context.Context, commitID Key) (AuditCommitRecord, bool, error) {
	rec, err := c.store.FindCommit(ctx, commitID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return AuditCommitRecord{}, false, nil
		}
		return AuditCommitRecord{}, false, dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "commit lookup failed")
	}
	return rec, true, nil
}

// GetCommitMetadata returns the label hash and data hash without fetching
// the ciphertext.
func (c *Client) GetCommitMetadata(ctx context.Context, commitID Key) (AuditCommitRecord, bool, error) {
	rec, err := c.store.FindCommitMetadata(ctx, commitID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return AuditCommitRecord{}, false, nil
		}
		return AuditCommitRecord{}, false, dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "commit metadata lookup failed")
	}
	return rec, true, nil
}

// RegisterRelease binds a release version to its source and artifact
// hashes, exactly once per versionID.
func (c *Client) RegisterRelease(ctx context.Context, versionID Key, sourceHash, artifactHash fingerprint.Digest, version string) (Receipt, error) {
	ctx, span := c.tracer.Start(ctx, "ledger.RegisterRelease",
		trace.WithAttributes(attribute.String("version", version)))
	defer span.End()

	if _, err := c.store.FindRelease(ctx, versionID); err == nil {
		c.countConflict(registryProject)
		return Receipt{}, dErrors.Newf(dErrors.CodeAlreadyRegistered, "version %q already registered", version)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		c.logger.WarnContext(ctx, "pre-submission read failed, submitting anyway",
			"version", version,
			"error", err,
		)
	}

	txID := uuid.NewString()
	start := time.Now()
	receipt, err := c.submitter.Submit(ctx, func(ctx context.Context) (Receipt, error) {
		rec, err := c.store.RegisterIfAbsent(ctx, ReleaseRecord{
			VersionID:    versionID,
			SourceHash:   sourceHash,
			ArtifactHash: artifactHash,
			Version:      version,
		})
		if err != nil {
			return Receipt{}, err
		}
		return Receipt{TxID: txID, BlockHeight: rec.BlockHeight, Timestamp: rec.Timestamp}, nil
	})
	if err != nil {
		return Receipt{}, c.classify(ctx, registryProject, dErrors.CodeAlreadyRegistered, start, err)
	}
	c.confirm(registryProject, start)

	c.events.Released(ctx, ReleasedEvent{
		VersionID:    versionID,
		SourceHash:   sourceHash,
		ArtifactHash: artifactHash,
		Version:      version,
		BlockHeight:  receipt.BlockHeight,
		Timestamp:    receipt.Timestamp,
	})
	c.countEvent()
	return receipt, nil
}

// GetRelease looks up a release record.
func (c *Client) GetRelease(ctx context.Context, versionID Key) (ReleaseRecord, bool, error) {
	rec, err := c.store.FindRelease(ctx, versionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ReleaseRecord{}, false, nil
		}
		return ReleaseRecord{}, false, dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "release lookup failed")
	}
	return rec, true, nil
}

// IsReleased reports whether versionID holds a record.
func (c *Client) IsReleased(ctx context.Context, versionID Key) (bool, error) {
	_, found, err := c.GetRelease(ctx, versionID)
	return found, err
}

// VerifyRelease compares supplied hashes against the stored record. False
// covers both "never registered" and "hash mismatch"; callers needing the
// distinction call IsReleased separately.
func (c *Client) VerifyRelease(ctx context.Context, versionID Key, sourceHash, artifactHash fingerprint.Digest) (bool, error) {
	rec, found, err := c.GetRelease(ctx, versionID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return rec.SourceHash == sourceHash && rec.ArtifactHash == artifactHash, nil
}

/// classify translates submission failures into domain errors: write-once
// conflicts are permanent and reported as such; everything else is a
// transient ledger condition the caller may re-check later.
func (c *Client) classify(ctx context.Context, registry string, conflictCode dErrors.Code, start time.Time, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		c.countConflict(registry)
		c.observe(registry, "conflict", start)
		return dErrors.Wrap(err, conflictCode, "record already exists")
	case errors.Is(err, sentinel.ErrTimeout):
		c.observe(registry, "timeout", start)
		return dErrors.Wrap(err, dErrors.CodeLedgerUnavailable,
			"submission not confirmed in time; re-check status before resubmitting")
	default:
		c.observe(registry, "failed", start)
		c.logger.ErrorContext(ctx, "ledger submission failed",
			"registry", registry,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeLedgerUnavailable, "ledger submission failed")
	}
}

func (c *Client) confirm(registry string, start time.Time) {
	c.observe(registry, "confirmed", start)
}

func (c *Client) observe(registry, outcome string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveSubmission(registry, outcome, time.Since(start))
	}
}

func (c *Client) countConflict(registry string) {
	if c.metrics != nil {
		c.metrics.IncrementConflicts(registry)
	}
}

func (c *Client) countEvent() {
	if c.metrics != nil {
		c.metrics.IncrementEventsEmitted()
	}
}
