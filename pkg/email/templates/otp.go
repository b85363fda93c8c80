package templates

import (
	"fmt"
	"time"
)

// OTPData is the view model of the verification code email.
type OTPData struct {
	Code string
	TTL  time.Duration
}

// OTPSubject is the subject line of the verification code email.
const OTPSubject = "Your 2FA Code"

// OTPText renders the plain-text body of the verification code email.
func OTPText(data OTPData) string {
	return fmt.Sprintf("Your verification code is: %s\n\nThe code expires in %d minutes. If you did not request it, you can ignore this email.",
		data.Code, int(data.TTL.Minutes()))
}
