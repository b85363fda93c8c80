package auth

import "time"

// Config holds the settings of Service read from the environment.
type Config struct {
	JWTSecret          string        `env:"JWT_SECRET,required"`
	JWTIssuer          string        `env:"JWT_ISSUER" envDefault:"fintrack"`
	SessionTTL         time.Duration `env:"AUTH_SESSION_TTL" envDefault:"24h"`
	ChallengeTTL       time.Duration `env:"AUTH_CHALLENGE_TTL" envDefault:"5m"`
	MailedCodeTTL      time.Duration `env:"AUTH_MAILED_CODE_TTL" envDefault:"10m"`
	BcryptCost         int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	NotifyTimeout      time.Duration `env:"AUTH_NOTIFY_TIMEOUT" envDefault:"10s"`
	LoginAttempts      int           `env:"AUTH_LOGIN_ATTEMPTS" envDefault:"10"`
	LoginAttemptsEvery time.Duration `env:"AUTH_LOGIN_ATTEMPTS_INTERVAL" envDefault:"1m"`
	OTPAttempts        int           `env:"AUTH_OTP_ATTEMPTS" envDefault:"5"`
	OTPAttemptsEvery   time.Duration `env:"AUTH_OTP_ATTEMPTS_INTERVAL" envDefault:"1m"`
}
