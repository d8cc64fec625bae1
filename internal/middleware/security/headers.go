// Package security applies browser security headers.
package security

import (
	"net/http"
)

// HeadersConfig holds the header values to apply.
type HeadersConfig struct {
	CSP                 string
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string
}

// DefaultHeadersConfig returns defaults for a same-origin app serving
// its own assets.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: "default-src 'self'; " +
			"script-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"connect-src 'self'; " +
			"object-src 'none'; " +
			"frame-ancestors 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'",
		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
	}
}

// HeadersMiddleware applies security headers to every response.
type HeadersMiddleware struct {
	config HeadersConfig
}

// NewHeadersMiddleware creates the middleware.
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	return &HeadersMiddleware{config: config}
}

// Middleware returns the HTTP middleware function.
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		if h.config.CSP != "" {
			hdr.Set("Content-Security-Policy", h.config.CSP)
		}
		if h.config.XFrameOptions != "" {
			hdr.Set("X-Frame-Options", h.config.XFrameOptions)
		}
		if h.config.XContentTypeOptions != "" {
			hdr.Set("X-Content-Type-Options", h.config.XContentTypeOptions)
		}
		if h.config.ReferrerPolicy != "" {
			hdr.Set("Referrer-Policy", h.config.ReferrerPolicy)
		}
		if h.config.PermissionsPolicy != "" {
			hdr.Set("Permissions-Policy", h.config.PermissionsPolicy)
		}
		next.ServeHTTP(w, r)
	})
}
