package service

import (
	"auth-web-server/config"
	"auth-web-server/internal/model"
	"auth-web-server/internal/ports"
	"auth-web-server/internal/security"
	"auth-web-server/internal/util"
	"context"
	"errors"
	"fmt"
	"time"
)

type AuthenticationService struct {
	jwtService             ports.JWTServiceInterface
	blacklistRepository    ports.BlacklistRepositoryInterface
	oneTimeTokenRepository ports.OneTimeTokenRepositoryInterface
	userRepository         ports.UserRepository
}

func NewAuthenticationService(
	jwtService ports.JWTServiceInterface,
	blacklistRepository ports.BlacklistRepositoryInterface,
	oneTimeTokenRepository ports.OneTimeTokenRepositoryInterface,
	userRepository ports.UserRepository,
) *AuthenticationService {
	return &AuthenticationService{
		jwtService,
		blacklistRepository,
		oneTimeTokenRepository,
		userRepository,
	}
}

// Login аутентифицирует пользователя по email и паролю.
// Неподтверждённый пользователь получает model.ErrNotVerified,
// токены при этом не выпускаются.
func (s *AuthenticationService) Login(ctx context.Context, email, password string) (*model.TokensPair, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[AuthService] database connection не найден в context")
	}

	user, err := s.userRepository.FindByEmail(ctx, db, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// не раскрываем, существует ли такой email
			return nil, model.ErrInvalidCredentials
		}
		return nil, util.LogError("[AuthService] ошибка поиска пользователя", err)
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, model.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, model.ErrNotVerified
	}

	return s.mintTokensPair(ctx, user.UUID)
}

// VerifyEmail подтверждает email по одноразовому токену.
// Токен изымается ровно один раз, после чего пользователь получает
// свежую пару токенов. Изъятие и подтверждение выполняются в одной
// транзакции: если подтверждение не удалось, токен остаётся в базе.
func (s *AuthenticationService) VerifyEmail(ctx context.Context, token string) (*model.TokensPair, *model.User, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, nil, fmt.Errorf("[AuthService] database connection не найден в context")
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, util.LogError("[AuthService] не удалось начать транзакцию", err)
	}
	defer tx.Rollback()

	oneTimeToken, err := s.oneTimeTokenRepository.ConsumeToken(ctx, tx, model.OneTimeTokenKindEmailVerification, token)
	if err != nil {
		return nil, nil, err
	}

	if oneTimeToken.Expired(time.Now().UTC()) {
		// изъятие просроченного токена фиксируем, строка больше не нужна
		if err := tx.Commit(); err != nil {
			return nil, nil, util.LogError("[AuthService] не удалось зафиксировать транзакцию", err)
		}
		return nil, nil, model.ErrExpiredToken
	}

	user, err := s.userRepository.FindByUUID(ctx, tx, oneTimeToken.UserUUID)
	if err != nil {
		return nil, nil, fmt.Errorf("[AuthService] владелец токена не найден: %w", err)
	}

	if err := s.userRepository.SetVerified(ctx, tx, user.UUID); err != nil {
		return nil, nil, fmt.Errorf("[AuthService] не удалось подтвердить пользователя: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, util.LogError("[AuthService] не удалось зафиксировать транзакцию", err)
	}
	user.IsVerified = true

	tokens, err := s.mintTokensPair(ctx, user.UUID)
	if err != nil {
		return nil, nil, err
	}

	return tokens, user, nil
}

// RefreshToken выпускает новый access токен по действующему refresh токену.
// Отозванный refresh токен не принимается даже до истечения подписи.
func (s *AuthenticationService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateJWT(refreshToken)
	if err != nil {
		return "", err
	}

	if claims.TokenKind != security.TokenKindRefresh {
		return "", fmt.Errorf("%w: ожидался refresh токен", model.ErrInvalidToken)
	}

	blacklisted, err := s.blacklistRepository.IsBlacklisted(ctx, claims.TokenUUID)
	if err != nil {
		return "", util.LogError("[AuthService] ошибка проверки чёрного списка", err)
	}
	if blacklisted {
		return "", fmt.Errorf("%w: refresh токен отозван", model.ErrInvalidToken)
	}

	accessToken, accessClaims, err := s.jwtService.NewAccessTokenFromRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	if err := s.blacklistRepository.RecordOutstanding(ctx, accessClaims.TokenUUID, claims.UserUUID); err != nil {
		return "", util.LogError("[AuthService] не удалось зарегистрировать выданный токен", err)
	}

	return accessToken, nil
}

// Logout отзывает переданные токены. Если не передан ни один,
// для пользователя выпускается свежая пара и отзывается целиком.
func (s *AuthenticationService) Logout(ctx context.Context, userUUID, refreshToken, accessToken string) error {
	if refreshToken == "" && accessToken == "" {
		return s.revokeFreshPair(ctx, userUUID)
	}

	if refreshToken != "" {
		if err := s.revokeToken(ctx, refreshToken); err != nil {
			return err
		}
	}

	if accessToken != "" {
		if err := s.revokeToken(ctx, accessToken); err != nil {
			return err
		}
	}

	return nil
}

func (s *AuthenticationService) revokeToken(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateJWT(token)
	if err != nil {
		return err
	}

	if err := s.blacklistRepository.Blacklist(ctx, claims.TokenUUID); err != nil {
		return util.LogError("[AuthService] не удалось отозвать токен", err)
	}

	return nil
}

func (s *AuthenticationService) revokeFreshPair(ctx context.Context, userUUID string) error {
	_, accessClaims, refreshClaims, err := s.jwtService.GenerateTokensPair(userUUID)
	if err != nil {
		return fmt.Errorf("[AuthService] ошибка генерации токенов: %w", err)
	}

	if err := s.blacklistRepository.Blacklist(ctx, accessClaims.TokenUUID); err != nil {
		return util.LogError("[AuthService] не удалось отозвать access токен", err)
	}
	if err := s.blacklistRepository.Blacklist(ctx, refreshClaims.TokenUUID); err != nil {
		return util.LogError("[AuthService] не удалось отозвать refresh токен", err)
	}

	return nil
}

func (s *AuthenticationService) mintTokensPair(ctx context.Context, userUUID string) (*model.TokensPair, error) {
	tokens, accessClaims, refreshClaims, err := s.jwtService.GenerateTokensPair(userUUID)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка генерации токенов: %w", err)
	}

	if err := s.blacklistRepository.RecordOutstanding(ctx, accessClaims.TokenUUID, userUUID); err != nil {
		return nil, util.LogError("[AuthService] не удалось зарегистрировать access токен", err)
	}
	if err := s.blacklistRepository.RecordOutstanding(ctx, refreshClaims.TokenUUID, userUUID); err != nil {
		return nil, util.LogError("[AuthService] не удалось зарегистрировать refresh токен", err)
	}

	return tokens, nil
}
