package ports

import (
	"auth-web-server/internal/model"
	"context"
)

type AuthenticationService interface {
	Login(ctx context.Context, email, password string) (*model.TokensPair, error)
	VerifyEmail(ctx context.Context, token string) (*model.TokensPair, *model.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userUUID, refreshToken, accessToken string) error
}
