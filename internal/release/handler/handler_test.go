package handler

//go:generate mockgen -source=handler.go -destination=mocks/release-handler-mocks.go -package=mocks

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	"lexseal/internal/platform/middleware"
	"lexseal/internal/release"
	"lexseal/internal/release/handler/mocks"
	dErrors "lexseal/pkg/domain-errors"
)

type allowValidator struct{}

func (allowValidator) ValidateToken(string) (*middleware.JWTClaims, error) {
	return &middleware.JWTClaims{Subject: "release-bot@example.org", Role: "publisher"}, nil
}

type ReleaseHandlerSuite struct {
	suite.Suite
}

func TestReleaseHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReleaseHandlerSuite))
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(mockService, logger, nil, allowValidator{})
	r := chi.NewRouter()
	h.Register(r)
	return r, mockService
}

func (s *ReleaseHandlerSuite) TestHandleRegister() {
	router, mockService := newTestRouter(s.T())

	src := fingerprint.Keccak256([]byte("source"))
	art := fingerprint.Keccak256([]byte("artifact"))
	versionID := ledger.DeriveKey("v1.2.0")

	mockService.EXPECT().
		Register(gomock.Any(), "v1.2.0", src, art).
		Return(release.RegisterResult{
			VersionID: versionID,
			Version:   "v1.2.0",
			Receipt:   ledger.Receipt{TxID: "tx1", BlockHeight: 9},
		}, nil)

	body, err := json.Marshal(map[string]any{
		"version":       "v1.2.0",
		"source_hash":   src.Hex(),
		"artifact_hash": art.Hex(),
	})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/releases", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusCreated, w.Code, w.Body.String())
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), versionID.Hex(), resp["version_id"])
	assert.Equal(s.T(), float64(9), resp["block_height"])
}

func (s *ReleaseHandlerSuite) TestHandleRegisterConflict() {
	router, mockService := newTestRouter(s.T())

	src := fingerprint.Keccak256([]byte("source"))

	mockService.EXPECT().
		Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(release.RegisterResult{}, dErrors.New(dErrors.CodeAlreadyRegistered, "version already registered"))

	body, _ := json.Marshal(map[string]any{
		"version":       "v1.2.0",
		"source_hash":   src.Hex(),
		"artifact_hash": src.Hex(),
	})
	req := httptest.NewRequest(http.MethodPost, "/releases", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusConflict, w.Code)
}

func (s *ReleaseHandlerSuite) TestHandleRegisterRequiresAuth() {
	router, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodPost, "/releases", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *ReleaseHandlerSuite) TestHandleRegisterBadHash() {
	router, _ := newTestRouter(s.T())

	body, _ := json.Marshal(map[string]any{
		"version":       "v1.2.0",
		"source_hash":   "short",
		"artifact_hash": "short",
	})
	req := httptest.NewRequest(http.MethodPost, "/releases", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *ReleaseHandlerSuite) TestHandleGet() {
	router, mockService := newTestRouter(s.T())

	src := fingerprint.Keccak256([]byte("source"))
	art := fingerprint.Keccak256([]byte("artifact"))
	versionID := ledger.DeriveKey("v1.2.0")

	mockService.EXPECT().
		Get(gomock.Any(), "v1.2.0").
		Return(ledger.ReleaseRecord{
			VersionID: versionID, Version: "v1.2.0", SourceHash: src, ArtifactHash: art, BlockHeight: 9,
		}, true, nil)

	req := httptest.NewRequest(http.MethodGet, "/releases/v1.2.0", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "v1.2.0", resp["version"])
	assert.Equal(s.T(), src.Hex(), resp["source_hash"])
}

func (s *ReleaseHandlerSuite) TestHandleGetNotFound() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().
		Get(gomock.Any(), "v9.9.9").
		Return(ledger.ReleaseRecord{}, false, nil)

	req := httptest.NewRequest(http.MethodGet, "/releases/v9.9.9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *ReleaseHandlerSuite) TestHandleVerify() {
	router, mockService := newTestRouter(s.T())

	src := fingerprint.Keccak256([]byte("source"))
	art := fingerprint.Keccak256([]byte("artifact"))

	mockService.EXPECT().
		Verify(gomock.Any(), "v1.2.0", src, art).
		Return(false, nil)

	body, _ := json.Marshal(map[string]any{
		"source_hash":   src.Hex(),
		"artifact_hash": art.Hex(),
	})
	req := httptest.NewRequest(http.MethodPost, "/releases/v1.2.0/verify", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code, "mismatch is a verdict, not an error")
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), false, resp["valid"])
}
