package ports

// EmailNotifier : доставка писем с одноразовыми токенами
type EmailNotifier interface {
	SendVerificationEmail(email, token string) error
	SendPasswordResetEmail(email, token string) error
}
