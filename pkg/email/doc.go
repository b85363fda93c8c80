// Package email sends transactional mail through a provider-agnostic EmailSender.
//
// Two implementations exist: a Postmark client for production delivery and
// DevSender, which writes messages to disk during development. New picks one
// according to Config.Driver:
//
//	sender, err := email.New(cfg)
//	if err != nil {
//	    return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//	    SendTo:   "alice@example.com",
//	    Subject:  "Your 2FA Code",
//	    BodyText: "Your verification code is: 123456",
//	})
//
// HTML bodies are produced with templ components from the templates subpackage.
// Errors wrap ErrInvalidConfig, ErrInvalidParams or ErrFailedToSendEmail.
package email
