// Package account exposes the auth service over JSON HTTP.
//
// Routes (relative to the mount point, usually /auth):
//
//	POST /register            create an account
//	POST /login               password step; returns a session or a 2FA challenge
//	POST /login/2fa           complete a challenged login with a totp or email code
//	POST /login/2fa/email     mail a code for a challenged login
//	GET  /user                profile (bearer)
//	PUT  /user                update name, email, image (bearer)
//	POST /change-password     (bearer)
//	POST /enable-2fa          provision a TOTP secret (bearer)
//	POST /disable-2fa         (bearer)
//	POST /verify-2fa          check a TOTP code (bearer)
//	POST /sendEmail-2fa       mail a code (bearer)
//	POST /verifyEmail-2fa     check a mailed code (bearer)
//
// Errors use the handler envelope; ClassifyError maps auth error kinds to
// status codes.
package account
