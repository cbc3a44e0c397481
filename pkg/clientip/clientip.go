// Package clientip resolves the address limiters and request logs key on.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the peer address of r without its port. Proxy headers
// are ignored since the API is reached directly. IPv4-mapped IPv6 addresses
// are reduced to their IPv4 form so one client maps to one limiter key.
func RealClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if ip := net.ParseIP(addr); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4.String()
		}
		return ip.String()
	}
	return addr
}
