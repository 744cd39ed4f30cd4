package register

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/models"
	"github.com/magabrotheeeer/zenpress/internal/services/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, name, email, password string) (*auth.Session, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация",
			body: `{"name":"Ana","email":"ana@x.com","password":"p1"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Ana", "ana@x.com", "p1").Return(&auth.Session{
					AccessToken: "tok",
					User:        &models.User{ID: "u1", Name: "Ana", Email: "ana@x.com", Role: models.RoleUser},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"access_token":"tok","token_type":"bearer"`,
		},
		{
			name:           "некорректный email",
			body:           `{"name":"Ana","email":"ana","password":"p1"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field email must be a valid email"}`,
		},
		{
			name:           "слишком длинный пароль",
			body:           `{"name":"Ana","email":"ana@x.com","password":"` + strings.Repeat("a", 73) + `"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `must be at most 72`,
		},
		{
			name: "email занят",
			body: `{"name":"Ana","email":"ana@x.com","password":"p1"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Ana", "ana@x.com", "p1").
					Return(nil, apperr.New(apperr.ErrConflict, "email already registered"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"email already registered"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			if w.Code == http.StatusOK {
				var resp Response
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "u1", resp.User.ID)
			}
			svc.AssertExpectations(t)
		})
	}
}
