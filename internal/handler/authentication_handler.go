package handler

import (
	"auth-web-server/internal/model"
	"auth-web-server/internal/model/requestresponse"
	"auth-web-server/internal/ports"
	"auth-web-server/internal/security"
	"errors"
	"log"
	"net/http"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService}
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Получение пары access и refresh токенов по email и паролю. Неподтверждённый пользователь токенов не получает.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.SuccessResponse "Успешная аутентификация"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверные данные или email не подтверждён"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		sendErrorResponse(w, 400, requestresponse.CodeValidationError, "Validation Failed", "email и password обязательны")
		return
	}

	tokens, err := h.AuthenticationService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, model.ErrNotVerified):
			sendErrorResponse(w, 400, requestresponse.CodeNotVerified, "User's email is not verified.")
		case errors.Is(err, model.ErrInvalidCredentials):
			sendErrorResponse(w, 400, requestresponse.CodeValidationError, "Validation Failed", err.Error())
		default:
			sendErrorResponse(w, 500, requestresponse.CodeInternalServerError, "An internal server error occurred")
		}
		return
	}

	sendSuccessResponse(w, 200, "Login successful.", requestresponse.LoginData{
		Access:  tokens.AccessToken,
		Refresh: tokens.RefreshToken,
	})
}

// VerifyEmail godoc
// @Summary Подтверждение email
// @Description Подтверждает email по одноразовому токену из письма. Токен действует 24 часа и изымается при первом использовании.
// @Tags Authentication
// @Produce json
// @Param token query string true "Одноразовый токен подтверждения"
// @Success 200 {object} requestresponse.SuccessResponse "Email подтверждён, выдана свежая пара токенов"
// @Failure 400 {object} requestresponse.ErrorResponse "Невалидный или просроченный токен"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/verify_email [get]
func (h *AuthenticationHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		sendErrorResponse(w, 400, requestresponse.CodeValidationError, "Validation Failed", "токен не указан")
		return
	}

	tokens, user, err := h.AuthenticationService.VerifyEmail(r.Context(), token)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, model.ErrExpiredToken):
			sendErrorResponse(w, 400, requestresponse.CodeExpiredToken, "Invalid or expired verification token.")
		case errors.Is(err, model.ErrTokenNotFound):
			sendErrorResponse(w, 400, requestresponse.CodeInvalidToken, "Invalid or expired verification token.")
		default:
			sendErrorResponse(w, 500, requestresponse.CodeInternalServerError, "An internal server error occurred")
		}
		return
	}

	sendSuccessResponse(w, 200, "Email verified successfully", requestresponse.VerifyEmailData{
		Access:  tokens.AccessToken,
		Refresh: tokens.RefreshToken,
		User:    user.Email,
	})
}

// RefreshToken godoc
// @Summary Обновление access токена
// @Description Выпускает новый access токен по действующему refresh токену. Отозванный или просроченный refresh токен не принимается.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse "Новый access токен"
// @Failure 400 {object} requestresponse.ErrorResponse "Невалидный refresh токен"
// @Failure 401 {object} requestresponse.ErrorResponse "Не авторизован"
// @Router /api/auth/refresh_token [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Refresh == "" {
		sendErrorResponse(w, 400, requestresponse.CodeValidationError, "Validation Failed", "refresh обязателен")
		return
	}

	accessToken, err := h.AuthenticationService.RefreshToken(r.Context(), req.Refresh)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, model.ErrInvalidToken), errors.Is(err, model.ErrExpiredToken):
			sendErrorResponse(w, 400, requestresponse.CodeInvalidRefreshToken, "Invalid or expired refresh token")
		default:
			sendErrorResponse(w, 500, requestresponse.CodeInternalServerError, "An internal server error occurred")
		}
		return
	}

	sendSuccessResponse(w, 200, "Access token successfully refreshed.", requestresponse.RefreshTokenData{
		Token: accessToken,
	})
}

// Logout godoc
// @Summary Завершение сессии
// @Description Отзывает переданные refresh и/или access токены. Без параметров выпускает и сразу отзывает свежую пару текущего пользователя.
// @Tags Authentication
// @Produce json
// @Param refresh query string false "Refresh токен"
// @Param access query string false "Access токен"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Невалидный токен"
// @Failure 401 {object} requestresponse.ErrorResponse "Не авторизован"
// @Router /api/auth/logout [get]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, 401, requestresponse.CodeUnauthorized, "unauthorized")
		return
	}

	refreshToken := r.URL.Query().Get("refresh")
	accessToken := r.URL.Query().Get("access")

	if err := h.AuthenticationService.Logout(r.Context(), claims.UserUUID, refreshToken, accessToken); err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, model.ErrInvalidToken), errors.Is(err, model.ErrExpiredToken):
			sendErrorResponse(w, 400, requestresponse.CodeInvalidRefreshToken, "Invalid or expired token")
		default:
			sendErrorResponse(w, 500, requestresponse.CodeInternalServerError, "An internal server error occurred")
		}
		return
	}

	sendSuccessResponse(w, 200, "Successfully logged out.", nil)
}
