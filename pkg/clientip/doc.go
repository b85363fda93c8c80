// Package clientip resolves the address of the client behind optional
// reverse proxies and carries it, with the user agent, in the request context
// for rate limiting and the audit trail.
//
//	res, err := clientip.New(clientip.Config{TrustedProxies: []string{"10.0.0.0/8"}, Headers: []string{"X-Forwarded-For"}})
//	r.Use(res.Middleware)
//	// later: clientip.FromContext(ctx)
package clientip
