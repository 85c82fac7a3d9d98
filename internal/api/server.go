package api

import (
	"context"
	"net/http"
	"time"

	"github.com/smeltergo/compositor/internal/glue"
	"github.com/smeltergo/compositor/internal/pipeline"
)

// Deps composes everything a route group needs, mirroring the teacher's
// internal/viewer/routes.Deps composition (one struct threaded through
// every RegisterX call rather than a grab-bag of globals).
type Deps struct {
	Pipeline    *pipeline.Pipeline
	Auth        *glue.BearerAuthenticator // nil disables auth entirely
	ImageAssets *glue.ImageAssetStore     // nil: image registration is resolution-only, no pixel decode
}

// requireAuth wraps fn with a bearer-token check when d.Auth is configured.
// A nil Auth means the control plane was started without a bearer token
// (local/dev use) and every request is allowed through; cmd/smelter builds
// an Auth only when config.API.BearerToken is non-empty.
func (d Deps) requireAuth(fn http.HandlerFunc) http.HandlerFunc {
	if d.Auth == nil {
		return fn
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Auth.Authenticate(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fn(w, r)
	}
}

// NewServer builds the control-plane mux: one RegisterX per spec.md §6
// endpoint group, plus the WebSocket event feed and swagger docs.
func NewServer(d Deps) *http.Server {
	mux := http.NewServeMux()

	RegisterInput(mux, d)
	RegisterOutput(mux, d)
	RegisterShader(mux, d)
	RegisterImage(mux, d)
	RegisterControl(mux, d)
	RegisterWS(mux, d)
	RegisterDocs(mux, d)

	return &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Serve runs the server on addr until ctx is cancelled, then shuts it down
// gracefully, mirroring the teacher's signal-driven shutdown idiom in
// cmd/smelter/main.go.
func Serve(ctx context.Context, addr string, d Deps) error {
	srv := NewServer(d)
	srv.Addr = addr

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
