package email

// Config holds email delivery configuration.
// The postmark driver needs PostmarkServerToken; the dev driver writes messages to DevDir.
type Config struct {
	Driver               string `env:"EMAIL_DRIVER" envDefault:"dev"` // postmark | dev
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
	DevDir               string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

const (
	DriverPostmark = "postmark"
	DriverDev      = "dev"
)
