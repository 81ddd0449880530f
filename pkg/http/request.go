package http

import (
	"net"
	"net/http"
)

// ClientIP returns the request's client address without the port. The router
// installs chi's RealIP middleware, so RemoteAddr already reflects
// X-Forwarded-For / X-Real-IP where present.
func ClientIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

// UserAgent returns the User-Agent header, possibly empty.
func UserAgent(r *http.Request) string {
	return r.Header.Get("User-Agent")
}
