// Package jwt issues and verifies the platform's HS256 access tokens and
// exposes the authenticated Principal to HTTP handlers.
//
// Tokens are built and checked with github.com/lestrrat-go/jwx/v2. Besides the
// registered claims (sub, iss, iat, nbf, exp, jti) a token carries the user's
// email, role, tenant ID ("tid", absent for platform users) and security
// version ("sv").
//
//	svc, err := jwt.New(key, jwt.WithIssuer("storekit"), jwt.WithTTL(time.Hour))
//	token, err := svc.Issue(jwt.Principal{UserID: id, Role: jwt.RoleOwner, TenantID: tenantID})
//	p, err := svc.Parse(token)
//
// Middleware is optional authentication: a request without a token continues
// anonymously and the route guard decides whether that is acceptable. A token
// that is present but invalid or expired is rejected with 401. RequireAuth can
// be mounted where a principal is mandatory.
package jwt
