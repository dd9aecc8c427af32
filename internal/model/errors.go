package model

import "errors"

// Доменные ошибки. Сервисы возвращают их (обёрнутыми через %w),
// хендлеры сопоставляют через errors.Is с кодом ответа.
var (
	ErrValidation         = errors.New("ошибка валидации")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrNotVerified        = errors.New("email пользователя не подтверждён")
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrEmailTaken         = errors.New("email уже зарегистрирован")
	ErrInvalidToken       = errors.New("невалидный токен")
	ErrExpiredToken       = errors.New("токен просрочен")
	ErrTokenNotFound      = errors.New("токен не найден")
	ErrTokenCollision     = errors.New("коллизия одноразового токена")
	ErrUnauthorized       = errors.New("пользователь не авторизован")
)
