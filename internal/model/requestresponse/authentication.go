package requestresponse

// Стабильные коды ошибок в теле ответа
const (
	CodeValidationError     = "VALIDATION_ERROR"
	CodeNotVerified         = "NOT_VERIFIED"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeExpiredToken        = "EXPIRED_TOKEN"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// SuccessResponse : общий конверт успешного ответа
type SuccessResponse struct {
	Message string      `json:"message" example:"Login successful."`
	Data    interface{} `json:"data"`
}

// ErrorResponse : общий конверт ошибки
type ErrorResponse struct {
	ErrorCode    string   `json:"error_code" example:"VALIDATION_ERROR"`
	ErrorMessage string   `json:"error_message" example:"Validation Failed"`
	Details      []string `json:"details"`
}

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// LoginData : данные успешной аутентификации
type LoginData struct {
	Access  string `json:"access" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
	Refresh string `json:"refresh" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
}

// VerifyEmailData : данные ответа на подтверждение email
type VerifyEmailData struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    string `json:"user" example:"user@example.com"`
}

// RefreshTokenRequest : запрос на обновление access токена
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
}

// RefreshTokenData : ответ с новым access токеном
type RefreshTokenData struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
}
