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
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// длина строки одноразового токена в символах hex
const oneTimeTokenLength = 64

type UserService struct {
	userRepository         ports.UserRepository
	jwtService             ports.JWTServiceInterface
	blacklistRepository    ports.BlacklistRepositoryInterface
	oneTimeTokenRepository ports.OneTimeTokenRepositoryInterface
	emailNotifier          ports.EmailNotifier
}

func NewUserService(
	userRepository ports.UserRepository,
	jwtService ports.JWTServiceInterface,
	blacklistRepository ports.BlacklistRepositoryInterface,
	oneTimeTokenRepository ports.OneTimeTokenRepositoryInterface,
	emailNotifier ports.EmailNotifier,
) *UserService {
	return &UserService{
		userRepository:         userRepository,
		jwtService:             jwtService,
		blacklistRepository:    blacklistRepository,
		oneTimeTokenRepository: oneTimeTokenRepository,
		emailNotifier:          emailNotifier,
	}
}

// Register создаёт неподтверждённого пользователя, выпускает пару токенов
// и одноразовый токен подтверждения email. Возвращает пару и токен подтверждения.
func (s *UserService) Register(ctx context.Context, email, password, firstName, lastName string) (*model.TokensPair, string, error) {
	if err := validateEmail(email); err != nil {
		return nil, "", fmt.Errorf("[UserService] %w", err)
	}

	if err := validatePassword(password); err != nil {
		return nil, "", fmt.Errorf("[UserService] %w", err)
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, "", fmt.Errorf("[UserService] database connection не найден в context")
	}

	exists, err := s.userRepository.ExistsByEmail(ctx, db, email)
	if err != nil {
		return nil, "", fmt.Errorf("[UserService] ошибка проверки email: %w", err)
	}
	if exists {
		return nil, "", model.ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}

	user := &model.User{
		UUID:         uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}

	created, err := s.userRepository.CreateUser(ctx, db, user)
	if err != nil {
		return nil, "", fmt.Errorf("[UserService] ошибка создания пользователя: %w", err)
	}

	tokens, accessClaims, refreshClaims, err := s.jwtService.GenerateTokensPair(created.UUID)
	if err != nil {
		return nil, "", fmt.Errorf("[UserService] ошибка генерации токенов: %w", err)
	}

	if err := s.blacklistRepository.RecordOutstanding(ctx, accessClaims.TokenUUID, created.UUID); err != nil {
		return nil, "", util.LogError("[UserService] не удалось зарегистрировать access токен", err)
	}
	if err := s.blacklistRepository.RecordOutstanding(ctx, refreshClaims.TokenUUID, created.UUID); err != nil {
		return nil, "", util.LogError("[UserService] не удалось зарегистрировать refresh токен", err)
	}

	verificationToken, err := s.issueOneTimeToken(ctx, db, model.OneTimeTokenKindEmailVerification, created.UUID)
	if err != nil {
		return nil, "", err
	}

	if err := s.emailNotifier.SendVerificationEmail(created.Email, verificationToken); err != nil {
		log.Printf("[UserService] не удалось отправить письмо подтверждения: %v", err)
	}

	return tokens, verificationToken, nil
}

// GetProfile возвращает профиль текущего пользователя
func (s *UserService) GetProfile(ctx context.Context) (*model.User, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.FindByUUID(ctx, db, claims.UserUUID)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateProfile частично обновляет профиль: пустые поля не изменяются
func (s *UserService) UpdateProfile(ctx context.Context, email, firstName, lastName string) (*model.User, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.FindByUUID(ctx, db, claims.UserUUID)
	if err != nil {
		return nil, err
	}

	if email != "" && email != user.Email {
		if err := validateEmail(email); err != nil {
			return nil, fmt.Errorf("[UserService] %w", err)
		}

		taken, err := s.userRepository.ExistsByEmail(ctx, db, email)
		if err != nil {
			return nil, fmt.Errorf("[UserService] ошибка проверки email: %w", err)
		}
		if taken {
			return nil, model.ErrEmailTaken
		}
		user.Email = email
	}
	if firstName != "" {
		user.FirstName = firstName
	}
	if lastName != "" {
		user.LastName = lastName
	}

	if err := s.userRepository.UpdateUser(ctx, db, user); err != nil {
		return nil, fmt.Errorf("[UserService] не удалось обновить профиль: %w", err)
	}

	return user, nil
}

// ChangePassword меняет пароль текущего пользователя
func (s *UserService) ChangePassword(ctx context.Context, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("[UserService] %w", err)
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[UserService] database connection не найден в context")
	}

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}

	return s.userRepository.UpdatePassword(ctx, db, claims.UserUUID, hash)
}

// SendPasswordResetToken выпускает одноразовый токен сброса пароля
// для пользователя с указанным email
func (s *UserService) SendPasswordResetToken(ctx context.Context, email string) (string, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return "", fmt.Errorf("[UserService] database connection не найден в context")
	}

	user, err := s.userRepository.FindByEmail(ctx, db, email)
	if err != nil {
		return "", err
	}

	resetToken, err := s.issueOneTimeToken(ctx, db, model.OneTimeTokenKindPasswordReset, user.UUID)
	if err != nil {
		return "", err
	}

	if err := s.emailNotifier.SendPasswordResetEmail(user.Email, resetToken); err != nil {
		log.Printf("[UserService] не удалось отправить письмо сброса пароля: %v", err)
	}

	return resetToken, nil
}

// ResetPassword меняет пароль по одноразовому токену сброса.
// Токен должен принадлежать текущему пользователю и изымается ровно один раз.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("[UserService] %w", err)
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[UserService] database connection не найден в context")
	}

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	oneTimeToken, err := s.oneTimeTokenRepository.ConsumeUserToken(ctx, db, model.OneTimeTokenKindPasswordReset, token, claims.UserUUID)
	if err != nil {
		return err
	}

	if oneTimeToken.Expired(time.Now().UTC()) {
		return model.ErrExpiredToken
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}

	return s.userRepository.UpdatePassword(ctx, db, claims.UserUUID, hash)
}

// issueOneTimeToken генерирует случайную строку и повторяет генерацию,
// пока вставка не пройдёт без коллизии с уже существующими токенами
func (s *UserService) issueOneTimeToken(ctx context.Context, exec sqlx.ExtContext, kind, userUUID string) (string, error) {
	for {
		token, err := util.GenerateRandomToken(oneTimeTokenLength)
		if err != nil {
			return "", err
		}

		err = s.oneTimeTokenRepository.SaveToken(ctx, exec, &model.OneTimeToken{
			Token:     token,
			Kind:      kind,
			UserUUID:  userUUID,
			CreatedAt: time.Now().UTC(),
		})
		if errors.Is(err, model.ErrTokenCollision) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("[UserService] не удалось сохранить одноразовый токен: %w", err)
		}

		return token, nil
	}
}

func validateEmail(email string) error {
	if len(email) < 3 || !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return fmt.Errorf("%w: некорректный email", model.ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: пароль должен содержать минимум 8 символов", model.ErrValidation)
	}

	var upperCount, lowerCount, digitCount, specialCount int

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 {
		return fmt.Errorf("%w: пароль должен содержать буквы в разных регистрах", model.ErrValidation)
	}
	if digitCount < 1 {
		return fmt.Errorf("%w: пароль должен содержать хотя бы одну цифру", model.ErrValidation)
	}
	if specialCount < 1 {
		return fmt.Errorf("%w: пароль должен содержать хотя бы один специальный символ", model.ErrValidation)
	}

	return nil
}
