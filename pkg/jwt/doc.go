// Package jwt issues and verifies HS256 JSON Web Tokens on top of
// github.com/golang-jwt/jwt/v5 and provides HTTP middleware and context helpers.
//
// Every token carries a purpose claim. Parse requires the caller to name the
// purpose it expects, so a token minted for one flow cannot be replayed in another
// even though both are signed with the same key.
//
//	svc, err := jwt.NewFromString(cfg.SigningKey, jwt.WithIssuer("fintrack"))
//	if err != nil {
//	    return err
//	}
//	token, claims, err := svc.Issue(userID, "session", 24*time.Hour)
//	...
//	claims, err = svc.Parse(token, "session")
//
// The middleware extracts a bearer token, verifies it and stores the claims in the
// request context, retrievable with GetClaims or SubjectFromContext.
package jwt
