package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/xenking/snsu-canteen/internal/domain/auth"
)

// APIKeyMiddleware authenticates admin requests via HMAC-SHA256 hashed API
// keys carried in the api_key header.
type APIKeyMiddleware struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewAPIKeyMiddleware creates an APIKeyMiddleware with the given API key
// repository and HMAC pepper.
func NewAPIKeyMiddleware(apikeys auth.Repository, pepper []byte) *APIKeyMiddleware {
	return &APIKeyMiddleware{
		apikeys: apikeys,
		pepper:  pepper,
	}
}

// Require wraps a handler, rejecting requests without a valid API key. The
// provided key is HMAC-hashed, looked up, and compared in constant time.
func (m *APIKeyMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("api_key")
		if key == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		mac := hmac.New(sha256.New, m.pepper)
		mac.Write([]byte(key))
		hash := mac.Sum(nil)

		info, err := m.apikeys.FindByHash(r.Context(), hex.EncodeToString(hash))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		// Constant-time comparison guards against timing side-channels even
		// though the lookup already succeeded.
		stored, err := hex.DecodeString(info.KeyHash)
		if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}
