package create

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/zenpress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userID, planName string) (*models.Subscription, error) {
	args := m.Called(ctx, userID, planName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		user           *models.User
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "месячный план",
			user: &models.User{ID: "u1"},
			body: `{"plan":"monthly","payment_method":"card"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "u1", "monthly").Return(&models.Subscription{
					ID: "s1", UserID: "u1", Plan: "monthly", Provider: models.ProviderDirect,
					StartedAt: started, ExpiresAt: started.AddDate(0, 0, 30),
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"expires_at":"2026-01-31T00:00:00Z"`,
		},
		{
			name: "неизвестный план",
			user: &models.User{ID: "u1"},
			body: `{"plan":"weekly"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "u1", "weekly").
					Return(nil, apperr.New(apperr.ErrValidation, "unknown plan"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"unknown plan"}`,
		},
		{
			name:           "план не указан",
			user:           &models.User{ID: "u1"},
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field plan is a required field`,
		},
		{
			name:           "без токена",
			body:           `{"plan":"monthly"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/subscription/create", strings.NewReader(tt.body))
			if tt.user != nil {
				req = req.WithContext(middlewarectx.WithUser(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
