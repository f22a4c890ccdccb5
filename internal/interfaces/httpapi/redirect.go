package httpapi

import (
	"net"
	"net/http"
	"strings"
)

// WWWRedirect sends www.<host> requests to the primary domain with a 301.
func WWWRedirect(primaryDomain string, next http.Handler) http.Handler {
	primaryDomain = strings.TrimSpace(primaryDomain)
	if primaryDomain == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(strings.ToLower(r.Host), "www.") {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, requestScheme(r)+"://"+primaryDomain+r.URL.RequestURI(), http.StatusMovedPermanently)
	})
}

// HTTPSRedirect is the plain-HTTP listener handler in production. Everything
// moves to https except the deploy webhook, which is served by app.
func HTTPSRedirect(primaryDomain string, app http.Handler) http.Handler {
	primaryDomain = strings.TrimSpace(primaryDomain)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/deploy" {
			app.ServeHTTP(w, r)
			return
		}

		host := hostWithoutPort(r.Host)
		if host == "" {
			host = primaryDomain
		}
		http.Redirect(w, r, "https://"+host+r.URL.RequestURI(), http.StatusMovedPermanently)
	})
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil || strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https") {
		return "https"
	}
	return "http"
}

func hostWithoutPort(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}
