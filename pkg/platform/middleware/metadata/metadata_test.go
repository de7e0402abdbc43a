package metadata

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"secretsanta/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain uses first hop", headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, remote: "10.0.0.2:1234", want: "203.0.113.5"},
		{name: "real ip header", headers: map[string]string{"X-Real-IP": " 198.51.100.7 "}, remote: "10.0.0.2:1234", want: "198.51.100.7"},
		{name: "ipv4 remote addr", remote: "192.0.2.10:5555", want: "192.0.2.10"},
		{name: "ipv6 remote addr", remote: "[::1]:8080", want: "::1"},
		{name: "garbage forwarded header falls through", headers: map[string]string{"X-Forwarded-For": "not-an-ip", "X-Real-IP": "198.51.100.8"}, remote: "10.0.0.2:1234", want: "198.51.100.8"},
		{name: "remote without port", remote: "192.0.2.11", want: "192.0.2.11"},
		{name: "empty remote", remote: "", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r))
		})
	}
}

func TestClientMetadataPopulatesContext(t *testing.T) {
	var ip, device string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		device = requestcontext.Device(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:4000"
	r.Header.Set("User-Agent", firefoxLinux)
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.1", ip)
	assert.Contains(t, device, "Firefox")
	assert.NotContains(t, device, "Mozilla/5.0")
}

const firefoxLinux = "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"

func TestDeviceFromUserAgent(t *testing.T) {
	t.Run("empty header", func(t *testing.T) {
		assert.Empty(t, DeviceFromUserAgent("  "))
	})

	t.Run("browser keeps only the major version", func(t *testing.T) {
		device := DeviceFromUserAgent(firefoxLinux)
		assert.True(t, strings.HasPrefix(device, "Firefox 120"), device)
		assert.NotContains(t, device, "120.0")
		assert.Contains(t, device, " on ")
	})

	t.Run("crawlers collapse to bot", func(t *testing.T) {
		assert.Equal(t, "bot", DeviceFromUserAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"))
	})

	t.Run("oversized header is bounded", func(t *testing.T) {
		assert.LessOrEqual(t, len(DeviceFromUserAgent(strings.Repeat("a", 10*maxUserAgentLen))), maxUserAgentLen)
	})
}
