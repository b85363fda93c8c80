// Package totp implements the one-time password primitives used for second-factor
// authentication.
//
// It covers RFC 6238 time-based codes (GenerateSecretKey, GetTOTPURI, Generate,
// Validate), AES-256-GCM helpers for keeping the shared secret encrypted at rest
// (EncryptSecret, DecryptSecret) and the short numeric codes delivered by email
// (GenerateNumericCode, HashCode, VerifyCode).
//
// All time-dependent functions take the moment explicitly so callers can inject a clock:
//
//	secret, _ := totp.GenerateSecretKey()
//	uri, _ := totp.GetTOTPURI(totp.URIParams{
//	    Secret:      secret,
//	    AccountName: "alice@example.com",
//	    Issuer:      "FinTrack",
//	})
//	ok, _ := totp.Validate(secret, "123456", time.Now())
//
// Errors are package level sentinels, possibly wrapped with errors.Join;
// inspect them with errors.Is.
package totp
