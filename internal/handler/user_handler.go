package handler

import (
	"auth-web-server/internal/model"
	"auth-web-server/internal/model/requestresponse"
	"auth-web-server/internal/ports"
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type UserHandler struct {
	ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService}
}

// Register godoc
// @Summary Регистрация нового пользователя
// @Description Создаёт неподтверждённого пользователя, возвращает пару токенов и одноразовый токен подтверждения email. Письмо пока пишется только в лог.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректные данные или занятый email"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tokens, verificationToken, err := h.UserService.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrEmailTaken):
			sendErrorResponse(w, 400, requestresponse.CodeValidationError, "Validation Failed", err.Error())
		default:
			sendErrorResponse(w, 500, requestresponse.CodeInternalServerError, "An internal server error occurred")
		}
		return
	}

	sendSuccessResponse(w, 200, "User registered successfully.", requestresponse.RegisterData{
		Access:                 tokens.AccessToken,
		Refresh:                tokens.RefreshToken,
		EmailVerificationToken: verificationToken,
	})
}

// GetProfile godoc
// @Summary Получение профиля текущего пользователя
// @Description Возвращает поля профиля без хэша пароля
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Пользователь не найден"
// @Router /api/auth/profile [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetProfile(r.Context())
	if err != nil {
		log.Println(err)
		sendUserError(w, err)
		return
	}

	sendSuccessResponse(w, 200, "User profile retrieved successfully.", profileData(user))
}

// UpdateProfile godoc
// @Summary Частичное обновление профиля
// @Description Обновляет email, имя и фамилию текущего пользователя. Пустые поля не изменяются.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.UpdateProfileRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Пользователь не найден"
// @Router /api/auth/profile [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.UserService.UpdateProfile(r.Context(), req.Email, req.FirstName, req.LastName)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrEmailTaken):
			sendErrorResponse(w, 400, requestresponse.CodeValidationError, "Validation Failed", err.Error())
		default:
			sendUserError(w, err)
		}
		return
	}

	sendSuccessResponse(w, 200, "User profile updated successfully.", profileData(user))
}

// ChangePassword godoc
// @Summary Смена пароля текущего пользователя
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.ChangePasswordRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204 "Пароль изменён"
// @Failure 400 {object} requestresponse.ErrorResponse "Пароль не проходит проверку"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/auth/change_password [post]
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), req.NewPassword); err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, model.ErrValidation):
			sendErrorResponse(w, 400, requestresponse.CodeValidationError, "Validation Failed", err.Error())
		default:
			sendUserError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendPasswordResetToken godoc
// @Summary Выпуск токена сброса пароля
// @Description Выпускает одноразовый токен сброса пароля для пользователя с указанным email. Письмо пока пишется только в лог.
// @Tags Users
// @Produce json
// @Param email query string true "Email пользователя"
// @Success 200 {object} requestresponse.SuccessResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Пользователь не найден"
// @Router /api/auth/send_password_reset_token [get]
func (h *UserHandler) SendPasswordResetToken(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		sendErrorResponse(w, 400, requestresponse.CodeValidationError, "Validation Failed", "email обязателен")
		return
	}

	resetToken, err := h.UserService.SendPasswordResetToken(r.Context(), email)
	if err != nil {
		log.Println(err)
		sendUserError(w, err)
		return
	}

	sendSuccessResponse(w, 200, "Password reset token sent to your email.", requestresponse.PasswordResetTokenData{
		Token: resetToken,
	})
}

// ResetPassword godoc
// @Summary Сброс пароля по одноразовому токену
// @Description Меняет пароль текущего пользователя по его одноразовому токену сброса. Токен действует 24 часа и изымается при первом использовании.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.ResetPasswordRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204 "Пароль изменён"
// @Failure 400 {object} requestresponse.ErrorResponse "Невалидный или просроченный токен"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/auth/reset_password [post]
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.UserService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, model.ErrValidation):
			sendErrorResponse(w, 400, requestresponse.CodeValidationError, "Validation Failed", err.Error())
		case errors.Is(err, model.ErrExpiredToken):
			sendErrorResponse(w, 400, requestresponse.CodeExpiredToken, "Password reset token has expired.")
		case errors.Is(err, model.ErrTokenNotFound):
			sendErrorResponse(w, 400, requestresponse.CodeInvalidToken, "Invalid or expired password reset token")
		default:
			sendUserError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// sendUserError отправляет общие для пользовательских операций ошибки
func sendUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrUnauthorized):
		sendErrorResponse(w, 401, requestresponse.CodeUnauthorized, "unauthorized")
	case errors.Is(err, model.ErrUserNotFound):
		sendErrorResponse(w, 404, requestresponse.CodeUserNotFound, "User not found")
	default:
		sendErrorResponse(w, 500, requestresponse.CodeInternalServerError, "An internal server error occurred")
	}
}

func profileData(user *model.User) requestresponse.ProfileData {
	return requestresponse.ProfileData{
		UUID:       user.UUID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		IsVerified: user.IsVerified,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		sendErrorResponse(w, 400, requestresponse.CodeValidationError, "Validation Failed", "invalid request body")
		return err
	}
	return nil
}

// sendErrorResponse отправляет конверт ошибки со стабильным error_code
func sendErrorResponse(w http.ResponseWriter, statusCode int, errorCode, errorMessage string, details ...string) {
	if details == nil {
		details = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(requestresponse.ErrorResponse{
		ErrorCode:    errorCode,
		ErrorMessage: errorMessage,
		Details:      details,
	})
}

// sendSuccessResponse отправляет конверт успешного ответа {message, data}
func sendSuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(requestresponse.SuccessResponse{
		Message: message,
		Data:    data,
	})
}
