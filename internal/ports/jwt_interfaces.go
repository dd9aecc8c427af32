package ports

import (
	"auth-web-server/internal/model"
	"auth-web-server/internal/security"
)

type JWTServiceInterface interface {
	GenerateTokensPair(userUUID string) (*model.TokensPair, *security.Claims, *security.Claims, error)
	ValidateJWT(tokenString string) (*security.Claims, error)
	NewAccessTokenFromRefresh(refreshToken string) (string, *security.Claims, error)
}
