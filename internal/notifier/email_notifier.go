package notifier

import (
	"auth-web-server/config"
	"log"
)

// EmailNotifier пишет письма в лог вместо реальной отправки.
// TODO: подключить отправку через SMTP из config.SMTPConfig
type EmailNotifier struct {
	cfg *config.SMTPConfig
}

func NewEmailNotifier(cfg *config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg}
}

func (n *EmailNotifier) SendVerificationEmail(email, token string) error {
	log.Printf("[notifier] письмо подтверждения email от %s для %s, токен: %s", n.cfg.From, email, token)
	return nil
}

func (n *EmailNotifier) SendPasswordResetEmail(email, token string) error {
	log.Printf("[notifier] письмо сброса пароля от %s для %s, токен: %s", n.cfg.From, email, token)
	return nil
}
