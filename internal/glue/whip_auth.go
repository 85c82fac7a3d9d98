package glue

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerAuthenticator gates WHIP-shaped input registration behind a single
// shared bearer token, grounded on
// original_source/compositor_pipeline/src/pipeline/whip_whep/{authenticator,bearer_token}.rs's
// intent (constant-time comparison against a configured token). Uses the
// Go stdlib's constant-time compare rather than the original's
// random-sleep-jitter defense, which doesn't fit Go's deterministic
// goroutine scheduler.
type BearerAuthenticator struct {
	token string
}

func NewBearerAuthenticator(token string) *BearerAuthenticator {
	return &BearerAuthenticator{token: token}
}

// Authenticate reports whether r carries the configured bearer token. A
// zero-value (unconfigured) token always denies, since an empty expected
// token would otherwise make ConstantTimeCompare trivially satisfiable by
// an empty header.
func (a *BearerAuthenticator) Authenticate(r *http.Request) bool {
	if a.token == "" {
		return false
	}
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	presented := strings.TrimPrefix(header, prefix)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(a.token)) == 1
}
