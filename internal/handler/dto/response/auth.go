package response

import (
	"aurum-commerce/internal/usecase/commands"
	"aurum-commerce/internal/usecase/queries"

	"github.com/google/uuid"
)

type RegisterResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

type LoginResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Role         string    `json:"role"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

func FromLoginResult(r *commands.LoginResult) LoginResponse {
	return LoginResponse{
		UserID:       r.UserID,
		Role:         r.Role,
		AccessToken:  r.TokenPair.AccessToken,
		RefreshToken: r.TokenPair.RefreshToken,
	}
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type CurrentUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	LastLogin *string   `json:"last_login,omitempty"`
}

func FromAuthorizedUserView(v *queries.AuthorizedUserView) CurrentUserResponse {
	resp := CurrentUserResponse{
		ID:    v.ID,
		Email: v.Email,
		Role:  v.Role,
	}
	if v.LastLogin != nil {
		s := v.LastLogin.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.LastLogin = &s
	}
	return resp
}
