package account

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Image    string `json:"image"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type completeLoginRequest struct {
	ChallengeToken string `json:"challenge_token"`
	Method         string `json:"method"`
	Code           string `json:"code"`
}

type loginChallengeRequest struct {
	ChallengeToken string `json:"challenge_token"`
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type codeRequest struct {
	Code string `json:"code"`
}
