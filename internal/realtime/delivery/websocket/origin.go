package websocket

import (
	"net"
	"net/http"
	"net/url"
)

// OriginPolicy decides which browser origins may open a socket. Outside
// production, localhost and private network origins are also accepted.
// Requests without an Origin header come from non-browser clients and pass.
type OriginPolicy struct {
	Production bool
	Allowed    []string
}

func (p OriginPolicy) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range p.Allowed {
		if allowed == "*" || origin == allowed {
			return true
		}
	}
	if p.Production {
		return false
	}
	return isLocalOrigin(origin)
}

func isLocalOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate()
}
