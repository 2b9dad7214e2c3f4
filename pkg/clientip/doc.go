// Package clientip resolves the address of the caller behind edge proxies.
//
// Headers are consulted in order, first valid address wins:
// CF-Connecting-IP, X-Forwarded-For (leftmost valid entry), X-Real-IP and
// finally RemoteAddr. Middleware stores the result in the request context and
// LoggerExtractor adds it to log records:
//
//	r.Use(clientip.Middleware)
//	ip := clientip.FromContext(r.Context())
package clientip
