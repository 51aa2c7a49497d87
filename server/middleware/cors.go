package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/kbukum/riv/errors"
)

// CORSConfig lists the browser origins allowed to call the run API. An
// empty AllowedOrigins admits no cross-origin caller.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
	// MaxAge is how many seconds a browser may cache a preflight answer.
	MaxAge int `yaml:"max_age" mapstructure:"max_age" validate:"min=0"`
}

// Validate rejects a wildcard origin combined with credentials, which would
// let any site act with the caller's cookies.
func (c *CORSConfig) Validate() error {
	if c.AllowCredentials && slices.Contains(c.AllowedOrigins, "*") {
		return errors.InvalidConfig("cors.allowed_origins", "wildcard origin cannot be combined with allow_credentials")
	}
	return nil
}

// CORS answers preflight requests and decorates responses to allowed
// origins. A preflight from an origin outside the list gets 403; other
// requests pass through without CORS headers so the browser blocks them.
// The request id header is exposed so scripts can correlate runs.
func CORS(cfg *CORSConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")
			allowed := isAllowedOrigin(origin, cfg.AllowedOrigins)
			if isPreflight(r) {
				if !allowed {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				setPreflightHeaders(w.Header(), cfg)
				setOriginHeaders(w.Header(), origin, cfg)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			if allowed {
				setOriginHeaders(w.Header(), origin, cfg)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

func setOriginHeaders(h http.Header, origin string, cfg *CORSConfig) {
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Expose-Headers", HeaderRequestID)
	if cfg.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
}

func setPreflightHeaders(h http.Header, cfg *CORSConfig) {
	if len(cfg.AllowedMethods) > 0 {
		h.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
	}
	if len(cfg.AllowedHeaders) > 0 {
		h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
	}
	if cfg.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
	}
}

func isAllowedOrigin(origin string, allowed []string) bool {
	return slices.ContainsFunc(allowed, func(a string) bool { return a == "*" || a == origin })
}
