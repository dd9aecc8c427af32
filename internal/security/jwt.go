package security

import (
	"auth-web-server/config"
	"auth-web-server/internal/model"
	"auth-web-server/internal/model/requestresponse"
	"auth-web-server/internal/repository"
	"auth-web-server/internal/util"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

type Claims struct {
	UserUUID  string `json:"user_uuid"`
	TokenUUID string `json:"token_uuid"`
	TokenKind string `json:"token_kind"`
	jwt.RegisteredClaims
}

type JWTService struct {
	*config.JWTConfig
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{cfg}
}

// GenerateTokensPair выпускает пару подписанных токенов для пользователя.
// Каждый токен несет собственный уникальный token_uuid (jti), по которому
// токен может быть отозван до истечения срока действия.
// Возвращает пару и claims обоих токенов для регистрации в списке выданных.
func (service *JWTService) GenerateTokensPair(userUUID string) (*model.TokensPair, *Claims, *Claims, error) {
	accessTTL, err := time.ParseDuration(service.AccessTokenTTL)
	if err != nil {
		return nil, nil, nil, util.LogError("ошибка парсинга access_token_ttl", err)
	}

	refreshTTL, err := time.ParseDuration(service.RefreshTokenTTL)
	if err != nil {
		return nil, nil, nil, util.LogError("ошибка парсинга refresh_token_ttl", err)
	}

	accessToken, accessClaims, err := service.issueToken(userUUID, TokenKindAccess, accessTTL)
	if err != nil {
		return nil, nil, nil, err
	}

	refreshToken, refreshClaims, err := service.issueToken(userUUID, TokenKindRefresh, refreshTTL)
	if err != nil {
		return nil, nil, nil, err
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, accessClaims, refreshClaims, nil
}

func (service *JWTService) issueToken(userUUID string, kind string, ttl time.Duration) (string, *Claims, error) {
	claims := &Claims{
		UserUUID:  userUUID,
		TokenUUID: uuid.New().String(),
		TokenKind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			Issuer:    "Auth-web-server",
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := jwtToken.SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", nil, util.LogError("ошибка подписи токена", err)
	}

	return signed, claims, nil
}

// ValidateJWT проверяет подпись и структуру токена.
// Возвращает model.ErrExpiredToken для просроченного токена
// и model.ErrInvalidToken для любого другого невалидного.
func (service *JWTService) ValidateJWT(jwtTokenStr string) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return []byte(service.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", model.ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}
	if !jwtToken.Valid {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}

// NewAccessTokenFromRefresh выпускает новый access токен по refresh токену.
// Сначала refresh токен должен пройти полную валидацию, после чего
// access токен выпускается для того же пользователя.
func (service *JWTService) NewAccessTokenFromRefresh(refreshTokenStr string) (string, *Claims, error) {
	refreshClaims, err := service.ValidateJWT(refreshTokenStr)
	if err != nil {
		return "", nil, err
	}

	if refreshClaims.TokenKind != TokenKindRefresh {
		return "", nil, fmt.Errorf("%w: ожидался refresh токен", model.ErrInvalidToken)
	}

	accessTTL, err := time.ParseDuration(service.AccessTokenTTL)
	if err != nil {
		return "", nil, util.LogError("ошибка парсинга access_token_ttl", err)
	}

	return service.issueToken(refreshClaims.UserUUID, TokenKindAccess, accessTTL)
}

// JWTMiddleware проверяет Bearer access токен: подпись, срок действия,
// вид токена и отсутствие в чёрном списке. Claims кладутся в context.
func JWTMiddleware(jwtService *JWTService, blacklistRepository *repository.BlacklistRepository) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(jwtService, blacklistRepository, next))
	}
}

func handleAuthentication(jwtService *JWTService, blacklistRepository *repository.BlacklistRepository, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			writeUnauthorized(writer)
			return
		}

		token := strings.TrimPrefix(authorizationHeader, "Bearer ")

		claims, err := jwtService.ValidateJWT(token)
		if err != nil {
			log.Printf("невалидный токен: %v", err)
			writeUnauthorized(writer)
			return
		}

		if claims.TokenKind != TokenKindAccess {
			log.Printf("токен %s не является access токеном", claims.TokenUUID)
			writeUnauthorized(writer)
			return
		}

		blacklisted, err := blacklistRepository.IsBlacklisted(request.Context(), claims.TokenUUID)
		if err != nil {
			log.Printf("ошибка проверки чёрного списка: %v", err)
			writeUnauthorized(writer)
			return
		}
		if blacklisted {
			log.Printf("токен %s отозван", claims.TokenUUID)
			writeUnauthorized(writer)
			return
		}

		req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
		next.ServeHTTP(writer, req)
	}
}

// writeUnauthorized отправляет 401 в общем конверте ошибки
func writeUnauthorized(writer http.ResponseWriter) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(writer).Encode(requestresponse.ErrorResponse{
		ErrorCode:    requestresponse.CodeUnauthorized,
		ErrorMessage: "unauthorized",
		Details:      []string{},
	})
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, model.ErrUnauthorized
	}
	return claims, nil
}
