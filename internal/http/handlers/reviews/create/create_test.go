package create

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/zenpress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/zenpress/internal/lib/apperr"
	"github.com/magabrotheeeer/zenpress/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Record(ctx context.Context, user *models.User, in models.ReviewInput) (*models.Review, error) {
	args := m.Called(ctx, user, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	user := &models.User{ID: "u1"}

	tests := []struct {
		name           string
		user           *models.User
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное создание",
			user: user,
			body: `{"technique_id":"t1","rating":5,"comment":"great"}`,
			setupMock: func(m *MockService) {
				m.On("Record", mock.Anything, user, models.ReviewInput{TechniqueID: "t1", Rating: 5, Comment: "great"}).
					Return(&models.Review{ID: "r1", TechniqueID: "t1", Rating: 5, SessionDuration: 60}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":"r1"`,
		},
		{
			name: "рейтинг вне диапазона",
			user: user,
			body: `{"technique_id":"t1","rating":6}`,
			setupMock: func(m *MockService) {
				m.On("Record", mock.Anything, user, models.ReviewInput{TechniqueID: "t1", Rating: 6}).
					Return(nil, apperr.New(apperr.ErrValidation, "rating must be between 1 and 5"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `rating must be between 1 and 5`,
		},
		{
			name: "неизвестная техника",
			user: user,
			body: `{"technique_id":"nope","rating":4}`,
			setupMock: func(m *MockService) {
				m.On("Record", mock.Anything, user, models.ReviewInput{TechniqueID: "nope", Rating: 4}).
					Return(nil, apperr.New(apperr.ErrNotFound, "technique not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `technique not found`,
		},
		{
			name:           "без technique_id",
			user:           user,
			body:           `{"rating":4}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field technique_id is a required field`,
		},
		{
			name:           "без пользователя",
			body:           `{"technique_id":"t1","rating":4}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/reviews/create", strings.NewReader(tt.body))
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
