package middleware

import (
	"net/http"

	"github.com/kbukum/whispersrt/util"
)

const defaultMaxBodySize = 32 << 20

// BodySizeLimit caps request bodies at maxSize (e.g. "32MB"). Handlers see
// an *http.MaxBytesError once the cap is crossed. Bodyless methods pass
// through untouched.
func BodySizeLimit(maxSize string) Middleware {
	limit := util.SizeOr(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
