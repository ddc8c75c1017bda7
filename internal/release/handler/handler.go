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
	"lexseal/internal/release"
	"lexseal/internal/transport/http/shared"
	dErrors "lexseal/pkg/domain-errors"
)

// Service defines the interface for release registry operations.
type Service interface {
	Register(ctx context.Context, version string, sourceHash, artifactHash fingerprint.Digest) (release.RegisterResult, error)
	Get(ctx context.Context, version string) (ledger.ReleaseRecord, bool, error)
	Verify(ctx context.Context, version string, sourceHash, artifactHash fingerprint.Digest) (bool, error)
}

// Handler handles release registry endpoints.
type Handler struct {
	logger       *slog.Logger
	releases     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new release Handler.
func New(releases Service, logger *slog.Logger, metrics *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		releases:     releases,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the release routes with the chi router.
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
			r.Post("/releases", h.handleRegister)
		})
		r.Get("/releases/{version}", h.handleGet)
		r.Post("/releases/{version}/verify", h.handleVerify)
	})
}

type registerRequest struct {
	Version      string `json:"version"`
	SourceHash   string `json:"source_hash"`
	ArtifactHash string `json:"artifact_hash"`
}

type registerResponse struct {
	VersionID   string `json:"version_id"`
	Version     string `json:"version"`
	TxID        string `json:"tx_id"`
	BlockHeight uint64 `json:"block_height"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	sourceHash, artifactHash, err := parseHashes(req.SourceHash, req.ArtifactHash)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.releases.Register(ctx, req.Version, sourceHash, artifactHash)
	if err != nil {
		h.logger.WarnContext(ctx, "release registration rejected",
			"request_id", requestID,
			"version", req.Version,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "release registered",
		"request_id", requestID,
		"version", result.Version,
		"publisher", middleware.GetSubject(ctx),
	)
	shared.WriteJSON(w, http.StatusCreated, registerResponse{
		VersionID:   result.VersionID.Hex(),
		Version:     result.Version,
		TxID:        result.Receipt.TxID,
		BlockHeight: result.Receipt.BlockHeight,
	})
}

type releaseResponse struct {
	VersionID    string    `json:"version_id"`
	Version      string    `json:"version"`
	SourceHash   string    `json:"source_hash"`
	ArtifactHash string    `json:"artifact_hash"`
	BlockHeight  uint64    `json:"block_height"`
	Timestamp    time.Time `json:"timestamp"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	version := chi.URLParam(r, "version")
	rec, found, err := h.releases.Get(ctx, version)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if !found {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "release not found"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, releaseResponse{
		VersionID:    rec.VersionID.Hex(),
		Version:      rec.Version,
		SourceHash:   rec.SourceHash.Hex(),
		ArtifactHash: rec.ArtifactHash.Hex(),
		BlockHeight:  rec.BlockHeight,
		Timestamp:    rec.Timestamp,
	})
}

type verifyReleaseRequest struct {
	SourceHash   string `json:"source_hash"`
	ArtifactHash string `json:"artifact_hash"`
}

type verifyReleaseResponse struct {
	Version string `json:"version"`
	Valid   bool   `json:"valid"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	version := chi.URLParam(r, "version")

	var req verifyReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	sourceHash, artifactHash, err := parseHashes(req.SourceHash, req.ArtifactHash)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	valid, err := h.releases.Verify(ctx, version, sourceHash, artifactHash)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if h.metrics != nil {
		result := "match"
		if !valid {
			result = "mismatch"
		}
		h.metrics.IncrementVerify("release", result)
	}

	shared.WriteJSON(w, http.StatusOK, verifyReleaseResponse{Version: version, Valid: valid})
}

func parseHashes(source, artifact string) (fingerprint.Digest, fingerprint.Digest, error) {
	sourceHash, err := fingerprint.ParseDigest(source)
	if err != nil {
		return fingerprint.Digest{}, fingerprint.Digest{}, dErrors.New(dErrors.CodeInvalidInput, "invalid source hash")
	}
	artifactHash, err := fingerprint.ParseDigest(artifact)
	if err != nil {
		return fingerprint.Digest{}, fingerprint.Digest{}, dErrors.New(dErrors.CodeInvalidInput, "invalid artifact hash")
	}
	return sourceHash, artifactHash, nil
}
