package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	"lexseal/internal/platform/metrics"
	"lexseal/internal/platform/middleware"
	"lexseal/internal/transport/http/shared"
	"lexseal/internal/verify"
	dErrors "lexseal/pkg/domain-errors"
)

// Service defines the interface for verification operations.
type Service interface {
	CheckNotarization(ctx context.Context, runID ledger.Key, expectedRoot *fingerprint.Digest) (verify.NotarizationCheck, error)
	CheckCommit(ctx context.Context, commitID ledger.Key, decrypt bool) (verify.CommitCheck, error)
	CheckRelease(ctx context.Context, version string, sourceHash, artifactHash fingerprint.Digest) (verify.ReleaseCheck, error)
}

// Handler handles verification endpoints. They are read-only and public.
type Handler struct {
	logger   *slog.Logger
	verifier Service
	metrics  *metrics.Metrics
}

// New creates a new verify Handler.
func New(verifier Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		verifier: verifier,
		metrics:  metrics,
	}
}

// Register registers the verify routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.LatencyMiddleware(h.metrics))

		r.Post("/verify/notarization", h.handleVerifyNotarization)
		r.Post("/verify/commit", h.handleVerifyCommit)
	})
}

type verifyNotarizationRequest struct {
	RunID        string `json:"run_id"`
	ExpectedRoot string `json:"expected_root,omitempty"`
}

type verifyNotarizationResponse struct {
	Found       bool   `json:"found"`
	Root        string `json:"root,omitempty"`
	BlockHeight uint64 `json:"block_height,omitempty"`
	Matches     *bool  `json:"matches,omitempty"`
}

func (h *Handler) handleVerifyNotarization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyNotarizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	runID, err := ledger.ParseKey(req.RunID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid run ID"))
		return
	}

	var expectedRoot *fingerprint.Digest
	if req.ExpectedRoot != "" {
		root, err := fingerprint.ParseDigest(req.ExpectedRoot)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid expected root"))
			return
		}
		expectedRoot = &root
	}

	check, err := h.verifier.CheckNotarization(ctx, runID, expectedRoot)
	if err != nil {
		h.logger.ErrorContext(ctx, "notarization verification failed",
			"request_id", middleware.GetRequestID(ctx),
			"run_id", runID.Hex(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	h.countVerify("notarization", check.Found, check.Matches)

	resp := verifyNotarizationResponse{Found: check.Found, Matches: check.Matches}
	if check.Found {
		resp.Root = check.Root.Hex()
		resp.BlockHeight = check.BlockHeight
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

type verifyCommitRequest struct {
	CommitID string `json:"commit_id"`
	Decrypt  bool   `json:"decrypt,omitempty"`
}

type verifyCommitResponse struct {
	Found           bool   `json:"found"`
	LabelHash       string `json:"label_hash,omitempty"`
	DataHash        string `json:"data_hash,omitempty"`
	BlockHeight     uint64 `json:"block_height,omitempty"`
	DataHashMatches *bool  `json:"data_hash_matches,omitempty"`
}

func (h *Handler) handleVerifyCommit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req verifyCommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	commitID, err := ledger.ParseKey(req.CommitID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid commit ID"))
		return
	}

	check, err := h.verifier.CheckCommit(ctx, commitID, req.Decrypt)
	if err != nil {
		h.logger.ErrorContext(ctx, "commit verification failed",
			"request_id", middleware.GetRequestID(ctx),
			"commit_id", commitID.Hex(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	h.countVerify("commit", check.Found, check.DataHashMatches)

	resp := verifyCommitResponse{Found: check.Found, DataHashMatches: check.DataHashMatches}
	if check.Found {
		resp.LabelHash = check.LabelHash.Hex()
		resp.DataHash = check.DataHash.Hex()
		resp.BlockHeight = check.BlockHeight
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) countVerify(kind string, found bool, matches *bool) {
	if h.metrics == nil {
		return
	}
	result := "found"
	switch {
	case !found:
		result = "absent"
	case matches != nil && !*matches:
		result = "mismatch"
	case matches != nil:
		result = "match"
	}
	h.metrics.IncrementVerify(kind, result)
}
