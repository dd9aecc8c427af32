package service_test

import (
	"auth-web-server/internal/model"
	"auth-web-server/internal/security"
	"auth-web-server/internal/service"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestUserService() (*service.UserService, *MockUserRepository, *MockJWTService, *MockBlacklistRepo, *MockOneTimeTokenRepo, *MockEmailNotifier) {
	mockUserRepo := new(MockUserRepository)
	mockJWTService := new(MockJWTService)
	mockBlacklistRepo := new(MockBlacklistRepo)
	mockOneTimeRepo := new(MockOneTimeTokenRepo)
	mockNotifier := new(MockEmailNotifier)

	svc := service.NewUserService(
		mockUserRepo,
		mockJWTService,
		mockBlacklistRepo,
		mockOneTimeRepo,
		mockNotifier,
	)

	return svc, mockUserRepo, mockJWTService, mockBlacklistRepo, mockOneTimeRepo, mockNotifier
}

func testContextWithClaims(userUUID string) context.Context {
	ctx, _ := testContextWithDB()
	return context.WithValue(ctx, security.UserContextKey, &security.Claims{
		UserUUID:  userUUID,
		TokenUUID: "access-jti",
		TokenKind: security.TokenKindAccess,
	})
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "email без @", email: "not-an-email", password: "Passw0rd!"},
		{name: "пустой email", email: "", password: "Passw0rd!"},
		{name: "короткий пароль", email: "a@x.com", password: "Aa1!"},
		{name: "пароль без цифр", email: "a@x.com", password: "Password!"},
		{name: "пароль без спецсимволов", email: "a@x.com", password: "Passw0rd"},
		{name: "пароль в одном регистре", email: "a@x.com", password: "passw0rd!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockUserRepo, _, _, _, _ := newTestUserService()
			ctx, _ := testContextWithDB()

			tokens, verificationToken, err := svc.Register(ctx, tt.email, tt.password, "Иван", "Иванов")

			assert.True(t, errors.Is(err, model.ErrValidation))
			assert.Nil(t, tokens)
			assert.Empty(t, verificationToken)
			mockUserRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, mockUserRepo, _, _, _, _ := newTestUserService()
	ctx, _ := testContextWithDB()

	mockUserRepo.On("ExistsByEmail", mock.Anything, mock.Anything, "a@x.com").Return(true, nil)

	tokens, _, err := svc.Register(ctx, "a@x.com", "Passw0rd!", "Иван", "Иванов")

	assert.True(t, errors.Is(err, model.ErrEmailTaken))
	assert.Nil(t, tokens)
	mockUserRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_Success(t *testing.T) {
	svc, mockUserRepo, mockJWTService, mockBlacklistRepo, mockOneTimeRepo, mockNotifier := newTestUserService()
	ctx, _ := testContextWithDB()

	mockUserRepo.On("ExistsByEmail", mock.Anything, mock.Anything, "a@x.com").Return(false, nil)
	mockUserRepo.On("CreateUser", mock.Anything, mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "a@x.com" && u.FirstName == "Иван" && !u.IsVerified && u.PasswordHash != "Passw0rd!"
	})).Return(&model.User{UUID: "user-123", Email: "a@x.com", FirstName: "Иван", LastName: "Иванов"}, nil)

	tokens, accessClaims, refreshClaims := testTokensPair()
	mockJWTService.On("GenerateTokensPair", "user-123").Return(tokens, accessClaims, refreshClaims, nil)
	mockBlacklistRepo.On("RecordOutstanding", mock.Anything, "access-jti", "user-123").Return(nil)
	mockBlacklistRepo.On("RecordOutstanding", mock.Anything, "refresh-jti", "user-123").Return(nil)

	mockOneTimeRepo.On("SaveToken", mock.Anything, mock.Anything, mock.MatchedBy(func(tok *model.OneTimeToken) bool {
		return tok.Kind == model.OneTimeTokenKindEmailVerification && tok.UserUUID == "user-123" && tok.Token != ""
	})).Return(nil)

	mockNotifier.On("SendVerificationEmail", "a@x.com", mock.Anything).Return(nil)

	gotTokens, verificationToken, err := svc.Register(ctx, "a@x.com", "Passw0rd!", "Иван", "Иванов")

	assert.NoError(t, err)
	assert.Equal(t, tokens, gotTokens)
	assert.NotEmpty(t, verificationToken)

	mockUserRepo.AssertExpectations(t)
	mockJWTService.AssertExpectations(t)
	mockBlacklistRepo.AssertExpectations(t)
	mockOneTimeRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

// При коллизии токена генерация повторяется до успешной вставки
func TestRegister_TokenCollisionRetried(t *testing.T) {
	svc, mockUserRepo, mockJWTService, mockBlacklistRepo, mockOneTimeRepo, mockNotifier := newTestUserService()
	ctx, _ := testContextWithDB()

	mockUserRepo.On("ExistsByEmail", mock.Anything, mock.Anything, "a@x.com").Return(false, nil)
	mockUserRepo.On("CreateUser", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.User{UUID: "user-123", Email: "a@x.com"}, nil)

	tokens, accessClaims, refreshClaims := testTokensPair()
	mockJWTService.On("GenerateTokensPair", "user-123").Return(tokens, accessClaims, refreshClaims, nil)
	mockBlacklistRepo.On("RecordOutstanding", mock.Anything, mock.Anything, "user-123").Return(nil)

	mockOneTimeRepo.On("SaveToken", mock.Anything, mock.Anything, mock.Anything).Return(model.ErrTokenCollision).Once()
	mockOneTimeRepo.On("SaveToken", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	mockNotifier.On("SendVerificationEmail", "a@x.com", mock.Anything).Return(nil)

	_, verificationToken, err := svc.Register(ctx, "a@x.com", "Passw0rd!", "Иван", "Иванов")

	assert.NoError(t, err)
	assert.NotEmpty(t, verificationToken)
	mockOneTimeRepo.AssertNumberOfCalls(t, "SaveToken", 2)
}

// Ошибка отправки письма не должна ломать регистрацию
func TestRegister_NotifierFailureIgnored(t *testing.T) {
	svc, mockUserRepo, mockJWTService, mockBlacklistRepo, mockOneTimeRepo, mockNotifier := newTestUserService()
	ctx, _ := testContextWithDB()

	mockUserRepo.On("ExistsByEmail", mock.Anything, mock.Anything, "a@x.com").Return(false, nil)
	mockUserRepo.On("CreateUser", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.User{UUID: "user-123", Email: "a@x.com"}, nil)

	tokens, accessClaims, refreshClaims := testTokensPair()
	mockJWTService.On("GenerateTokensPair", "user-123").Return(tokens, accessClaims, refreshClaims, nil)
	mockBlacklistRepo.On("RecordOutstanding", mock.Anything, mock.Anything, "user-123").Return(nil)
	mockOneTimeRepo.On("SaveToken", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockNotifier.On("SendVerificationEmail", "a@x.com", mock.Anything).Return(errors.New("smtp недоступен"))

	_, _, err := svc.Register(ctx, "a@x.com", "Passw0rd!", "Иван", "Иванов")
	assert.NoError(t, err)
}

func TestGetProfile(t *testing.T) {
	svc, mockUserRepo, _, _, _, _ := newTestUserService()
	ctx := testContextWithClaims("user-123")

	mockUserRepo.On("FindByUUID", mock.Anything, mock.Anything, "user-123").
		Return(&model.User{UUID: "user-123", Email: "a@x.com", FirstName: "Иван"}, nil)

	user, err := svc.GetProfile(ctx)

	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	mockUserRepo.AssertExpectations(t)
}

func TestGetProfile_NoClaims(t *testing.T) {
	svc, _, _, _, _, _ := newTestUserService()
	ctx, _ := testContextWithDB()

	user, err := svc.GetProfile(ctx)

	assert.True(t, errors.Is(err, model.ErrUnauthorized))
	assert.Nil(t, user)
}

func TestUpdateProfile(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		firstName  string
		lastName   string
		setupMocks func(u *MockUserRepository)
		expectErr  error
		check      func(t *testing.T, user *model.User)
	}{
		{
			name:      "обновляется только имя",
			firstName: "Пётр",
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByUUID", mock.Anything, mock.Anything, "user-123").
					Return(&model.User{UUID: "user-123", Email: "a@x.com", FirstName: "Иван", LastName: "Иванов"}, nil)
				u.On("UpdateUser", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, user *model.User) {
				assert.Equal(t, "Пётр", user.FirstName)
				assert.Equal(t, "Иванов", user.LastName)
				assert.Equal(t, "a@x.com", user.Email)
			},
		},
		{
			name:  "новый email уже занят",
			email: "taken@x.com",
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByUUID", mock.Anything, mock.Anything, "user-123").
					Return(&model.User{UUID: "user-123", Email: "a@x.com"}, nil)
				u.On("ExistsByEmail", mock.Anything, mock.Anything, "taken@x.com").Return(true, nil)
			},
			expectErr: model.ErrEmailTaken,
		},
		{
			name:  "смена email",
			email: "new@x.com",
			setupMocks: func(u *MockUserRepository) {
				u.On("FindByUUID", mock.Anything, mock.Anything, "user-123").
					Return(&model.User{UUID: "user-123", Email: "a@x.com"}, nil)
				u.On("ExistsByEmail", mock.Anything, mock.Anything, "new@x.com").Return(false, nil)
				u.On("UpdateUser", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, user *model.User) {
				assert.Equal(t, "new@x.com", user.Email)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockUserRepo, _, _, _, _ := newTestUserService()
			ctx := testContextWithClaims("user-123")

			tt.setupMocks(mockUserRepo)

			user, err := svc.UpdateProfile(ctx, tt.email, tt.firstName, tt.lastName)

			if tt.expectErr != nil {
				assert.True(t, errors.Is(err, tt.expectErr))
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				tt.check(t, user)
			}

			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestChangePassword(t *testing.T) {
	svc, mockUserRepo, _, _, _, _ := newTestUserService()
	ctx := testContextWithClaims("user-123")

	mockUserRepo.On("UpdatePassword", mock.Anything, mock.Anything, "user-123", mock.MatchedBy(func(hash string) bool {
		return security.CheckPassword("NewPassw0rd!", hash)
	})).Return(nil)

	err := svc.ChangePassword(ctx, "NewPassw0rd!")

	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

func TestChangePassword_WeakPassword(t *testing.T) {
	svc, mockUserRepo, _, _, _, _ := newTestUserService()
	ctx := testContextWithClaims("user-123")

	err := svc.ChangePassword(ctx, "weak")

	assert.True(t, errors.Is(err, model.ErrValidation))
	mockUserRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendPasswordResetToken(t *testing.T) {
	svc, mockUserRepo, _, _, mockOneTimeRepo, mockNotifier := newTestUserService()
	ctx, _ := testContextWithDB()

	mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "a@x.com").
		Return(&model.User{UUID: "user-123", Email: "a@x.com"}, nil)
	mockOneTimeRepo.On("SaveToken", mock.Anything, mock.Anything, mock.MatchedBy(func(tok *model.OneTimeToken) bool {
		return tok.Kind == model.OneTimeTokenKindPasswordReset && tok.UserUUID == "user-123"
	})).Return(nil)
	mockNotifier.On("SendPasswordResetEmail", "a@x.com", mock.Anything).Return(nil)

	resetToken, err := svc.SendPasswordResetToken(ctx, "a@x.com")

	assert.NoError(t, err)
	assert.NotEmpty(t, resetToken)
	mockNotifier.AssertExpectations(t)
}

func TestSendPasswordResetToken_UserNotFound(t *testing.T) {
	svc, mockUserRepo, _, _, mockOneTimeRepo, _ := newTestUserService()
	ctx, _ := testContextWithDB()

	mockUserRepo.On("FindByEmail", mock.Anything, mock.Anything, "missing@x.com").
		Return(nil, model.ErrUserNotFound)

	resetToken, err := svc.SendPasswordResetToken(ctx, "missing@x.com")

	assert.True(t, errors.Is(err, model.ErrUserNotFound))
	assert.Empty(t, resetToken)
	mockOneTimeRepo.AssertNotCalled(t, "SaveToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name       string
		setupMocks func(u *MockUserRepository, o *MockOneTimeTokenRepo)
		expectErr  error
	}{
		{
			name: "токен чужой или не существует",
			setupMocks: func(u *MockUserRepository, o *MockOneTimeTokenRepo) {
				o.On("ConsumeUserToken", mock.Anything, mock.Anything, model.OneTimeTokenKindPasswordReset, "tok", "user-123").
					Return(nil, model.ErrTokenNotFound)
			},
			expectErr: model.ErrTokenNotFound,
		},
		{
			name: "токен истёк",
			setupMocks: func(u *MockUserRepository, o *MockOneTimeTokenRepo) {
				o.On("ConsumeUserToken", mock.Anything, mock.Anything, model.OneTimeTokenKindPasswordReset, "tok", "user-123").
					Return(&model.OneTimeToken{Token: "tok", UserUUID: "user-123", CreatedAt: now.Add(-25 * time.Hour)}, nil)
			},
			expectErr: model.ErrExpiredToken,
		},
		{
			name: "успешный сброс",
			setupMocks: func(u *MockUserRepository, o *MockOneTimeTokenRepo) {
				o.On("ConsumeUserToken", mock.Anything, mock.Anything, model.OneTimeTokenKindPasswordReset, "tok", "user-123").
					Return(&model.OneTimeToken{Token: "tok", UserUUID: "user-123", CreatedAt: now.Add(-time.Hour)}, nil)
				u.On("UpdatePassword", mock.Anything, mock.Anything, "user-123", mock.Anything).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockUserRepo, _, _, mockOneTimeRepo, _ := newTestUserService()
			ctx := testContextWithClaims("user-123")

			tt.setupMocks(mockUserRepo, mockOneTimeRepo)

			err := svc.ResetPassword(ctx, "tok", "NewPassw0rd!")

			if tt.expectErr != nil {
				assert.True(t, errors.Is(err, tt.expectErr))
			} else {
				assert.NoError(t, err)
			}

			mockOneTimeRepo.AssertExpectations(t)
			mockUserRepo.AssertExpectations(t)
		})
	}
}
