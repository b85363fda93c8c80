package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fintrack/pkg/audit"
	"github.com/dmitrymomot/fintrack/pkg/email/templates"
	"github.com/dmitrymomot/fintrack/pkg/logger"
	"github.com/dmitrymomot/fintrack/pkg/validator"
)

var errChallengeReplaced = errors.New("challenge replaced concurrently")

// EnableTwoFactor provisions a rolling-code secret. The secret is returned
// only here; accounts that already have one get ErrTwoFactorAlreadyEnabled.
func (s *Service) EnableTwoFactor(ctx context.Context, userID uuid.UUID) (*Provisioning, error) {
	var prov Provisioning
	_, err := s.store.Update(ctx, userID, func(a *Account) error {
		if a.TwoFactorEnabled && a.TwoFactorSecret != "" {
			return ErrTwoFactorAlreadyEnabled
		}
		var err error
		prov, err = s.otp.Provision(a)
		return err
	})
	if err != nil {
		err = s.fail(ctx, "enable_2fa", err)
		s.record(ctx, ActionTwoFactorEnabled, userID, err)
		return nil, err
	}

	s.record(ctx, ActionTwoFactorEnabled, userID, nil)
	return &prov, nil
}

// DisableTwoFactor clears every second-factor field. A non-empty code is
// verified first: against the rolling secret when one exists, otherwise
// against the outstanding mailed code.
func (s *Service) DisableTwoFactor(ctx context.Context, userID uuid.UUID, code string) error {
	if code != "" {
		if err := validate(validator.NumericCode("code", code, 6)); err != nil {
			return err
		}
		if err := s.allow(ctx, s.otpLimiter, userID.String()); err != nil {
			s.record(ctx, ActionTwoFactorDisabled, userID, err)
			return err
		}
	}

	_, err := s.store.Update(ctx, userID, func(a *Account) error {
		if !a.TwoFactorEnabled {
			return ErrTwoFactorNotEnabled
		}
		if code != "" {
			if err := s.verifyAny(a, code); err != nil {
				return err
			}
		}
		a.DisableTwoFactor()
		return nil
	})
	if err != nil {
		err = s.challengeFailure(ctx, "disable_2fa", userID, err)
		s.record(ctx, ActionTwoFactorDisabled, userID, err)
		return err
	}

	if code != "" {
		s.resetOTPLimiter(ctx, userID)
	}
	s.record(ctx, ActionTwoFactorDisabled, userID, nil)
	return nil
}

// VerifyTwoFactor checks a rolling code for an authenticated account without
// changing it.
func (s *Service) VerifyTwoFactor(ctx context.Context, userID uuid.UUID, code string) error {
	if err := validate(validator.NumericCode("code", code, 6)); err != nil {
		return err
	}
	if err := s.allow(ctx, s.otpLimiter, userID.String()); err != nil {
		s.record(ctx, ActionTwoFactorVerified, userID, err)
		return err
	}

	if err := s.checkRolling(ctx, userID, code); err != nil {
		err = s.challengeFailure(ctx, "verify_2fa", userID, err)
		s.record(ctx, ActionTwoFactorVerified, userID, err)
		return err
	}

	s.resetOTPLimiter(ctx, userID)
	s.record(ctx, ActionTwoFactorVerified, userID, nil)
	return nil
}

// RequestMailedChallenge mails a fresh code to the account. When delivery
// fails the previous challenge state is restored.
func (s *Service) RequestMailedChallenge(ctx context.Context, userID uuid.UUID) error {
	return s.sendMailedChallenge(ctx, userID)
}

// CompleteMailedChallenge consumes the outstanding mailed code. A wrong code
// leaves the challenge in place for another attempt.
func (s *Service) CompleteMailedChallenge(ctx context.Context, userID uuid.UUID, code string) error {
	if err := validate(validator.NumericCode("code", code, 6)); err != nil {
		return err
	}
	if err := s.allow(ctx, s.otpLimiter, userID.String()); err != nil {
		s.record(ctx, ActionChallengeCompleted, userID, err)
		return err
	}

	_, err := s.store.Update(ctx, userID, func(a *Account) error {
		if !a.TwoFactorEnabled {
			return ErrTwoFactorNotEnabled
		}
		return s.otp.VerifyMailed(a, code, s.now())
	})
	if err != nil {
		err = s.challengeFailure(ctx, "complete_mailed_challenge", userID, err)
		s.record(ctx, ActionChallengeCompleted, userID, err)
		return err
	}

	s.resetOTPLimiter(ctx, userID)
	s.record(ctx, ActionChallengeCompleted, userID, nil)
	return nil
}

func (s *Service) sendMailedChallenge(ctx context.Context, userID uuid.UUID) error {
	var (
		code     string
		prevHash string
		prevExp  *time.Time
	)
	acc, err := s.store.Update(ctx, userID, func(a *Account) error {
		if !a.TwoFactorEnabled {
			return ErrTwoFactorNotEnabled
		}
		prevHash, prevExp = a.TwoFactorToken, a.TwoFactorExpiry
		var err error
		code, err = s.otp.IssueMailed(a, s.now())
		return err
	})
	if err != nil {
		err = s.fail(ctx, "send_mailed_challenge", err)
		s.record(ctx, ActionChallengeSent, userID, err)
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	body := templates.OTPText(templates.OTPData{Code: code, TTL: s.otp.MailedCodeTTL()})
	if err := s.notifier.Send(sendCtx, acc.Email, templates.OTPSubject, body); err != nil {
		s.logger.ErrorContext(ctx, "failed to send one-time code",
			logger.UserID(userID),
			logger.Email(acc.Email),
			logger.Error(err),
		)
		s.restoreChallenge(ctx, userID, acc.TwoFactorToken, prevHash, prevExp)
		if !errors.Is(err, ErrNotificationFailed) {
			err = errors.Join(ErrNotificationFailed, err)
		}
		s.record(ctx, ActionChallengeSent, userID, err)
		return err
	}

	s.record(ctx, ActionChallengeSent, userID, nil, audit.WithMetadata("channel", "email"))
	return nil
}

// restoreChallenge puts back the challenge that was outstanding before issued,
// unless another request has replaced issued in the meantime.
func (s *Service) restoreChallenge(ctx context.Context, userID uuid.UUID, issued, prevHash string, prevExp *time.Time) {
	_, err := s.store.Update(context.WithoutCancel(ctx), userID, func(a *Account) error {
		if a.TwoFactorToken != issued {
			return errChallengeReplaced
		}
		if prevHash == "" || prevExp == nil {
			a.ClearChallenge()
			return nil
		}
		a.SetChallenge(prevHash, *prevExp)
		return nil
	})
	if err != nil && !errors.Is(err, errChallengeReplaced) {
		s.logger.ErrorContext(ctx, "failed to roll back mailed challenge", logger.UserID(userID), logger.Error(err))
	}
}

func (s *Service) checkRolling(ctx context.Context, userID uuid.UUID, code string) error {
	acc, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !acc.TwoFactorEnabled || acc.TwoFactorSecret == "" {
		return ErrTwoFactorNotEnabled
	}
	ok, err := s.otp.VerifyRolling(acc, code, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return errChallengeMismatch
	}
	return nil
}

func (s *Service) verifyAny(a *Account, code string) error {
	if a.TwoFactorSecret == "" {
		return s.otp.VerifyMailed(a, code, s.now())
	}
	ok, err := s.otp.VerifyRolling(a, code, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return errChallengeMismatch
	}
	return nil
}

func (s *Service) resetOTPLimiter(ctx context.Context, userID uuid.UUID) {
	if s.otpLimiter == nil {
		return
	}
	if err := s.otpLimiter.Reset(ctx, userID.String()); err != nil {
		s.logger.WarnContext(ctx, "failed to reset otp limiter", logger.Error(err))
	}
}

func withStep(step string) audit.EventOption {
	return audit.WithMetadata("step", step)
}
