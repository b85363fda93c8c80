package account

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/fintrack/handler"
	"github.com/dmitrymomot/fintrack/svc/auth"
)

func (m *Module) register(ctx handler.Context, req registerRequest) handler.Response {
	acc, err := m.svc.Register(ctx, auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Image:    req.Image,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(acc.Profile(), handler.WithJSONStatus(http.StatusCreated))
}

func (m *Module) login(ctx handler.Context, req loginRequest) handler.Response {
	res, err := m.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

func (m *Module) completeLogin(ctx handler.Context, req completeLoginRequest) handler.Response {
	res, err := m.svc.CompleteLogin(ctx, req.ChallengeToken, req.Method, req.Code)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

func (m *Module) requestLoginChallenge(ctx handler.Context, req loginChallengeRequest) handler.Response {
	if err := m.svc.RequestLoginChallenge(ctx, req.ChallengeToken); err != nil {
		return handler.Error(err)
	}
	return handler.Message("verification code sent to your email")
}

func (m *Module) getUser(ctx handler.Context, _ struct{}) handler.Response {
	return withUser(ctx, func(id uuid.UUID) handler.Response {
		profile, err := m.svc.GetProfile(ctx, id)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(profile)
	})
}

func (m *Module) updateUser(ctx handler.Context, req updateUserRequest) handler.Response {
	return withUser(ctx, func(id uuid.UUID) handler.Response {
		profile, err := m.svc.UpdateProfile(ctx, id, auth.UpdateProfileInput{
			Name:  req.Name,
			Email: req.Email,
			Image: req.Image,
		})
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(profile)
	})
}

func (m *Module) changePassword(ctx handler.Context, req changePasswordRequest) handler.Response {
	return withUser(ctx, func(id uuid.UUID) handler.Response {
		if err := m.svc.ChangePassword(ctx, id, req.OldPassword, req.NewPassword); err != nil {
			return handler.Error(err)
		}
		return handler.Message("password changed")
	})
}

func (m *Module) enableTwoFactor(ctx handler.Context, _ struct{}) handler.Response {
	return withUser(ctx, func(id uuid.UUID) handler.Response {
		provisioning, err := m.svc.EnableTwoFactor(ctx, id)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(provisioning)
	})
}

func (m *Module) disableTwoFactor(ctx handler.Context, req codeRequest) handler.Response {
	return withUser(ctx, func(id uuid.UUID) handler.Response {
		if err := m.svc.DisableTwoFactor(ctx, id, req.Code); err != nil {
			return handler.Error(err)
		}
		return handler.Message("two-factor authentication disabled")
	})
}

func (m *Module) verifyTwoFactor(ctx handler.Context, req codeRequest) handler.Response {
	return withUser(ctx, func(id uuid.UUID) handler.Response {
		if err := m.svc.VerifyTwoFactor(ctx, id, req.Code); err != nil {
			return handler.Error(err)
		}
		return handler.Message("code verified")
	})
}

func (m *Module) sendEmailChallenge(ctx handler.Context, _ struct{}) handler.Response {
	return withUser(ctx, func(id uuid.UUID) handler.Response {
		if err := m.svc.RequestMailedChallenge(ctx, id); err != nil {
			return handler.Error(err)
		}
		return handler.Message("verification code sent to your email")
	})
}

func (m *Module) verifyEmailChallenge(ctx handler.Context, req codeRequest) handler.Response {
	return withUser(ctx, func(id uuid.UUID) handler.Response {
		if err := m.svc.CompleteMailedChallenge(ctx, id, req.Code); err != nil {
			return handler.Error(err)
		}
		return handler.Message("code verified")
	})
}

// withUser runs fn with the account ID set by RequireUser.
func withUser(ctx handler.Context, fn func(uuid.UUID) handler.Response) handler.Response {
	id, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return handler.Error(auth.ErrUnauthenticated)
	}
	return fn(id)
}
