package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/dancingpony/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	IPConfig          *pkghttp.IPConfig
}

// RateLimitByIP limits requests per client address. The address is taken
// from forwarding headers only when the peer is a trusted proxy.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, config.IPConfig), nil
		}),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

// RateLimitByLogin limits requests per Basic username, so one account cannot
// be hammered from many addresses. Requests without Basic credentials share
// the client-address bucket.
func RateLimitByLogin(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if username, _, ok := r.BasicAuth(); ok && username != "" {
				return "login:" + username, nil
			}
			return "ip:" + pkghttp.ExtractClientIP(r, config.IPConfig), nil
		}),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteTooManyRequests(w, "Rate limit exceeded, try again later")
}
