// Package metadata records who is calling: client address and a coarse
// device description.
package metadata

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/mssola/useragent"

	"secretsanta/pkg/requestcontext"
)

const (
	unknownIP       = "unknown"
	maxUserAgentLen = 512
)

// ClientMetadata stores the caller address and device summary on the
// context. Audit events read them from there.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(),
			ClientIPFromRequest(r),
			DeviceFromUserAgent(r.Header.Get("User-Agent")),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceFromUserAgent reduces a User-Agent header to "<browser> <major> on
// <os>", or "bot" for crawlers. The raw header is never kept.
func DeviceFromUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if len(raw) > maxUserAgentLen {
		raw = raw[:maxUserAgentLen]
	}
	ua := useragent.New(raw)
	if ua.Bot() {
		return "bot"
	}
	name, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")
	device := strings.TrimSpace(name + " " + major)
	if os := ua.OS(); os != "" {
		device += " on " + os
	}
	return device
}

// ClientIPFromRequest prefers the first X-Forwarded-For hop, then X-Real-IP,
// then the socket address. Header values that are not IP addresses are ignored.
func ClientIPFromRequest(r *http.Request) string {
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	for _, candidate := range []string{first, r.Header.Get("X-Real-IP")} {
		if addr, err := netip.ParseAddr(strings.TrimSpace(candidate)); err == nil {
			return addr.String()
		}
	}

	if r.RemoteAddr == "" {
		return unknownIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
