package requestresponse

// RegisterRequest : тело запроса регистрации
type RegisterRequest struct {
	Email     string `json:"email" example:"user@example.com"`
	Password  string `json:"password" example:"P@ssw0rd123"`
	FirstName string `json:"first_name" example:"Ivan"`
	LastName  string `json:"last_name" example:"Petrov"`
}

// RegisterData : данные успешной регистрации
type RegisterData struct {
	Access                 string `json:"access"`
	Refresh                string `json:"refresh"`
	EmailVerificationToken string `json:"email_verification_token" example:"9f2c4a1be03d..."`
}

// ProfileData : профиль пользователя (без хэша пароля)
type ProfileData struct {
	UUID       string `json:"uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Email      string `json:"email" example:"user@example.com"`
	FirstName  string `json:"first_name" example:"Ivan"`
	LastName   string `json:"last_name" example:"Petrov"`
	IsVerified bool   `json:"is_verified" example:"true"`
}

// UpdateProfileRequest : тело запроса на частичное обновление профиля.
// Пустые поля не изменяются.
type UpdateProfileRequest struct {
	Email     string `json:"email,omitempty" example:"new@example.com"`
	FirstName string `json:"first_name,omitempty" example:"Ivan"`
	LastName  string `json:"last_name,omitempty" example:"Petrov"`
}

// ChangePasswordRequest : тело запроса смены пароля
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" example:"N3wP@ssw0rd!"`
}

// PasswordResetTokenData : ответ с токеном сброса пароля
type PasswordResetTokenData struct {
	Token string `json:"token" example:"9f2c4a1be03d..."`
}

// ResetPasswordRequest : тело запроса сброса пароля по одноразовому токену
type ResetPasswordRequest struct {
	Token       string `json:"token" example:"9f2c4a1be03d..."`
	NewPassword string `json:"new_password" example:"N3wP@ssw0rd!"`
}
