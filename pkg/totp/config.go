package totp

// Config holds the one-time password settings read from the environment.
type Config struct {
	// Base64 AES-256 key; when empty TOTP secrets are stored unencrypted.
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY"`
	Issuer        string `env:"TOTP_ISSUER" envDefault:"FinTrack"`
	// Server-side pepper for hashing mailed codes.
	CodePepper string `env:"OTP_CODE_PEPPER,required"`
}
