// Package httptransport assembles the HTTP surface: every domain handler
// mounts its own routes and middleware, this package only composes them and
// adds the operational endpoints.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auditvaulthandler "lexseal/internal/auditvault/handler"
	releasehandler "lexseal/internal/release/handler"
	runhandler "lexseal/internal/run/handler"
	verifyhandler "lexseal/internal/verify/handler"
)

// Handlers collects the domain handlers the router mounts.
type Handlers struct {
	Run     *runhandler.Handler
	Audit   *auditvaulthandler.Handler
	Verify  *verifyhandler.Handler
	Release *releasehandler.Handler
}

// NewRouter wires all public endpoints.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h.Run.Register(r)
	h.Audit.Register(r)
	h.Verify.Register(r)
	h.Release.Register(r)

	return r
}
