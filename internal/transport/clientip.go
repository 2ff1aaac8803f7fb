package transport

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type clientIPKey struct{}
type peerIPKey struct{}

// ClientIPFromContext returns the caller address recorded by ClientIPMiddleware.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// ClientIPMiddleware stores the caller address in context. With trustProxy
// the address comes from the proxy headers read by chi's RealIP; a value
// that does not parse as an IP falls back to the connection peer.
func ClientIPMiddleware(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		var resolve http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := canonicalIP(r.RemoteAddr)
			if ip == "" {
				ip, _ = r.Context().Value(peerIPKey{}).(string)
			}
			ctx := context.WithValue(r.Context(), clientIPKey{}, ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
		if trustProxy {
			resolve = middleware.RealIP(resolve)
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), peerIPKey{}, canonicalIP(r.RemoteAddr))
			resolve.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// canonicalIP returns addr's IP in canonical form, or "" when addr holds
// no valid IP. The result always fits the 64-character ip columns.
func canonicalIP(addr string) string {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return ""
	}
	return ip.String()
}
