// Package auth is the account security core: registration, password login,
// stateless session tokens and second-factor authentication with rolling
// (TOTP) or mailed one-time codes.
//
// Service orchestrates the components. Storage is abstracted by
// CredentialStore; see the memstore, pgstore and mongostore subpackages.
//
// Login is split in two steps for accounts with two-factor authentication:
// Login returns a short-lived challenge token instead of a session, and
// CompleteLogin exchanges it together with a valid code for the session token.
//
// Errors are sentinels classified by KindOf. Unknown email and wrong password
// both yield ErrInvalidCredentials, and every rejected one-time code yields
// ErrInvalidOrExpiredChallenge.
package auth
