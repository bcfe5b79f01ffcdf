package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// MaxBodyBytes caps JSON request bodies. Dish images travel inline as base64,
// so the limit is generous.
const MaxBodyBytes = 8 << 20

// ErrEmptyBody is returned by DecodeJSON when the request has no body
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON decodes a single JSON object from r's body into dst. Unknown
// fields and trailing data are rejected.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes+1))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: multiple values")
	}
	return nil
}

// IPConfig lists proxies whose forwarding headers are trusted
type IPConfig struct {
	TrustedProxies []netip.Prefix
}

// ParseTrustedProxies parses CIDR ranges and bare addresses, skipping invalid entries.
func ParseTrustedProxies(cidrs []string) *IPConfig {
	cfg := &IPConfig{}
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if p, err := netip.ParsePrefix(c); err == nil {
			cfg.TrustedProxies = append(cfg.TrustedProxies, p.Masked())
			continue
		}
		// a bare address trusts exactly that host
		if addr, err := netip.ParseAddr(c); err == nil {
			cfg.TrustedProxies = append(cfg.TrustedProxies, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return cfg
}

// ExtractClientIP returns the caller's address. X-Forwarded-For and X-Real-IP
// are only honoured when the direct peer is a trusted proxy.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remote := remoteAddr(r)
	if config == nil || !config.trusts(remote) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, candidate := range strings.Split(xff, ",") {
			if addr, err := netip.ParseAddr(strings.TrimSpace(candidate)); err == nil {
				return addr.String()
			}
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String()
	}
	return remote
}

func (c *IPConfig) trusts(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, p := range c.TrustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
