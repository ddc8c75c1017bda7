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
	"lexseal/internal/run"
	"lexseal/internal/transport/http/shared"
	dErrors "lexseal/pkg/domain-errors"
)

// Service defines the interface for run notarization operations.
type Service interface {
	Notarize(ctx context.Context, req run.NotarizeRequest) (run.NotarizeResult, error)
	GetNotarization(ctx context.Context, runID ledger.Key) (ledger.NotarizationRecord, bool, error)
	StatusByID(ctx context.Context, runID ledger.Key) (run.Status, error)
}

// Handler handles run notarization endpoints.
type Handler struct {
	logger       *slog.Logger
	runs         Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new run Handler.
func New(
	runs Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		runs:         runs,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the run routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.LatencyMiddleware(h.metrics))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
			r.Post("/ledger/notarize", h.handleNotarize)
		})
		r.Get("/ledger/runs/{runID}", h.handleGetNotarization)
		r.Get("/ledger/runs/{runID}/status", h.handleStatus)
	})
}

type documentPayload struct {
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type notarizeRequest struct {
	RunName       string            `json:"run_name"`
	Documents     []documentPayload `json:"documents"`
	EvidenceTexts []string          `json:"evidence_texts"`
	AuditPayload  json.RawMessage   `json:"audit_payload,omitempty"`
}

type legResponse struct {
	Confirmed   bool   `json:"confirmed"`
	TxID        string `json:"tx_id,omitempty"`
	BlockHeight uint64 `json:"block_height,omitempty"`
	Error       string `json:"error,omitempty"`
}

type notarizeResponse struct {
	RunID     string       `json:"run_id"`
	Root      string       `json:"root"`
	LeafCount int          `json:"leaf_count"`
	Notary    legResponse  `json:"notary"`
	CommitID  string       `json:"commit_id,omitempty"`
	Audit     *legResponse `json:"audit,omitempty"`
}

func (h *Handler) handleNotarize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req notarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid notarize request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	documents := make([]fingerprint.Document, len(req.Documents))
	for i, d := range req.Documents {
		documents[i] = fingerprint.Document{Title: d.Title, Content: d.Content, Metadata: d.Metadata}
	}

	result, err := h.runs.Notarize(ctx, run.NotarizeRequest{
		RunName:       req.RunName,
		Documents:     documents,
		EvidenceTexts: req.EvidenceTexts,
		AuditPayload:  req.AuditPayload,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "notarization rejected",
			"request_id", requestID,
			"run_name", req.RunName,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	resp := notarizeResponse{
		RunID:     result.RunID.Hex(),
		Root:      result.Root.Hex(),
		LeafCount: result.LeafCount,
		Notary:    toLegResponse(result.Notary),
	}
	if len(req.AuditPayload) > 0 {
		audit := toLegResponse(result.Audit)
		resp.CommitID = result.CommitID.Hex()
		resp.Audit = &audit
	}

	status := http.StatusCreated
	if !result.Notary.Done || (resp.Audit != nil && !result.Audit.Done) {
		// Partial success: report what happened on each leg and let the
		// caller decide. 207 mirrors the per-leg outcomes in the body.
		status = http.StatusMultiStatus
	}
	if result.Notary.Done && h.metrics != nil {
		h.metrics.IncrementRunsNotarized()
	}
	shared.WriteJSON(w, status, resp)
}

func toLegResponse(leg run.LegOutcome) legResponse {
	resp := legResponse{
		Confirmed:   leg.Done,
		TxID:        leg.Receipt.TxID,
		BlockHeight: leg.Receipt.BlockHeight,
	}
	if leg.Err != nil {
		resp.Error = string(dErrors.CodeOf(leg.Err))
	}
	return resp
}

type notarizationResponse struct {
	RunID       string    `json:"run_id"`
	Root        string    `json:"root"`
	Publisher   string    `json:"publisher"`
	BlockHeight uint64    `json:"block_height"`
	Timestamp   time.Time `json:"timestamp"`
}

func (h *Handler) handleGetNotarization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID, err := ledger.ParseKey(chi.URLParam(r, "runID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid run ID"))
		return
	}

	rec, found, err := h.runs.GetNotarization(ctx, runID)
	if err != nil {
		h.logger.ErrorContext(ctx, "notarization lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"run_id", runID.Hex(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	if !found {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "run not notarized"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, notarizationResponse{
		RunID:       rec.RunID.Hex(),
		Root:        rec.Root.Hex(),
		Publisher:   rec.Publisher,
		BlockHeight: rec.BlockHeight,
		Timestamp:   rec.Timestamp,
	})
}

type statusResponse struct {
	RunID          string `json:"run_id"`
	Notarized      bool   `json:"notarized"`
	Root           string `json:"root,omitempty"`
	BlockHeight    uint64 `json:"block_height,omitempty"`
	CommitID       string `json:"commit_id"`
	AuditCommitted bool   `json:"audit_committed"`
	AuditHeight    uint64 `json:"audit_height,omitempty"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID, err := ledger.ParseKey(chi.URLParam(r, "runID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid run ID"))
		return
	}

	status, err := h.runs.StatusByID(ctx, runID)
	if err != nil {
		h.logger.ErrorContext(ctx, "run status lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"run_id", runID.Hex(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	resp := statusResponse{
		RunID:          status.RunID.Hex(),
		Notarized:      status.Notarized,
		CommitID:       status.CommitID.Hex(),
		AuditCommitted: status.AuditCommitted,
		AuditHeight:    status.AuditHeight,
	}
	if status.Notarized {
		resp.Root = status.Root.Hex()
		resp.BlockHeight = status.BlockHeight
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}
