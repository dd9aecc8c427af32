package security_test

import (
	"auth-web-server/internal/model/requestresponse"
	"auth-web-server/internal/security"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Отказ в авторизации приходит в общем конверте ошибки, а не plain text
func TestJWTMiddleware_UnauthorizedEnvelope(t *testing.T) {
	service := newTestJWTService()

	pair, _, _, err := service.GenerateTokensPair("user-123")
	assert.NoError(t, err)

	tests := []struct {
		name                string
		authorizationHeader string
	}{
		{name: "без заголовка", authorizationHeader: ""},
		{name: "не bearer", authorizationHeader: "Basic abc"},
		{name: "мусор вместо токена", authorizationHeader: "Bearer garbage"},
		{name: "refresh вместо access", authorizationHeader: "Bearer " + pair.RefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			// до проверки чёрного списка во всех этих случаях дело не доходит
			middleware := security.JWTMiddleware(service, nil)
			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			}))

			request := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
			if tt.authorizationHeader != "" {
				request.Header.Set("Authorization", tt.authorizationHeader)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.False(t, nextCalled)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

			var resp requestresponse.ErrorResponse
			assert.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
			assert.Equal(t, requestresponse.CodeUnauthorized, resp.ErrorCode)
			assert.NotNil(t, resp.Details)
		})
	}
}
