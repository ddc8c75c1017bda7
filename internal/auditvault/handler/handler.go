package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lexseal/internal/auditvault"
	"lexseal/internal/ledger"
	"lexseal/internal/platform/metrics"
	"lexseal/internal/platform/middleware"
	"lexseal/internal/transport/http/shared"
	dErrors "lexseal/pkg/domain-errors"
)

// Service defines the interface for audit vault operations.
type Service interface {
	Seal(ctx context.Context, label string, plaintext []byte) (auditvault.SealResult, error)
}

// Ledger reads commit metadata for lookups.
type Ledger interface {
	GetCommitMetadata(ctx context.Context, commitID ledger.Key) (ledger.AuditCommitRecord, bool, error)
}

// Handler handles audit vault endpoints.
type Handler struct {
	logger       *slog.Logger
	vault        Service
	reader       Ledger
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new audit vault Handler.
func New(
	vault Service,
	reader Ledger,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		vault:        vault,
		reader:       reader,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.LatencyMiddleware(h.metrics))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
			r.Post("/ledger/audit", h.handleSeal)
		})
		r.Get("/ledger/audit/{commitID}", h.handleGetMetadata)
	})
}

type sealRequest struct {
	Label   string          `json:"label"`
	Payload json.RawMessage `json:"payload"`
}

type sealResponse struct {
	CommitID    string `json:"commit_id"`
	LabelHash   string `json:"label_hash"`
	DataHash    string `json:"data_hash"`
	TxID        string `json:"tx_id"`
	BlockHeight uint64 `json:"block_height"`
}

func (h *Handler) handleSeal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req sealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid audit seal request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	sealed, err := h.vault.Seal(ctx, req.Label, req.Payload)
	if err != nil {
		h.logger.WarnContext(ctx, "audit seal rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, sealResponse{
		CommitID:    sealed.CommitID.Hex(),
		LabelHash:   sealed.LabelHash.Hex(),
		DataHash:    sealed.DataHash.Hex(),
		TxID:        sealed.Receipt.TxID,
		BlockHeight: sealed.Receipt.BlockHeight,
	})
}

type commitMetadataResponse struct {
	CommitID    string    `json:"commit_id"`
	LabelHash   string    `json:"label_hash"`
	DataHash    string    `json:"data_hash"`
	BlockHeight uint64    `json:"block_height"`
	Timestamp   time.Time `json:"timestamp"`
}

// handleGetMetadata returns commit facts without the ciphertext: metadata
// reads are unauthenticated, payload bytes are not.
func (h *Handler) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	commitID, err := ledger.ParseKey(chi.URLParam(r, "commitID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid commit ID"))
		return
	}

	rec, found, err := h.reader.GetCommitMetadata(ctx, commitID)
	if err != nil {
		h.logger.ErrorContext(ctx, "commit metadata lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"commit_id", commitID.Hex(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	if !found {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "commit not found"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, commitMetadataResponse{
		CommitID:    rec.CommitID.Hex(),
		LabelHash:   rec.LabelHash.Hex(),
		DataHash:    rec.DataHash.Hex(),
		BlockHeight: rec.BlockHeight,
		Timestamp:   rec.Timestamp,
	})
}
