package model

import "time"

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT, короткоживущий)
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access"`

	// Refresh токен (JWT, долгоживущий)
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh"`
}

const (
	OneTimeTokenKindEmailVerification = "email_verification"
	OneTimeTokenKindPasswordReset     = "password_reset"
)

// OneTimeTokenTTL : окно действия одноразового токена с момента создания
const OneTimeTokenTTL = 24 * time.Hour

// OneTimeToken : одноразовый токен для подтверждения email или сброса пароля.
// Строка токена глобально уникальна, токен удаляется при первом использовании.
type OneTimeToken struct {
	Token     string    `db:"token"`
	Kind      string    `db:"kind"`
	UserUUID  string    `db:"user_uuid"`
	CreatedAt time.Time `db:"created_at"`
}

// Expired : проверяет, истекло ли окно действия токена на момент now
func (t *OneTimeToken) Expired(now time.Time) bool {
	return now.After(t.CreatedAt.Add(OneTimeTokenTTL))
}
