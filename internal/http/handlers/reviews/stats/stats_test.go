package stats

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/zenpress/internal/models"
)

type serviceFunc func(ctx context.Context) (models.ReviewStats, error)

func (f serviceFunc) Stats(ctx context.Context) (models.ReviewStats, error) { return f(ctx) }

func TestStatsHandler_EmptySetHasZeroes(t *testing.T) {
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), serviceFunc(func(context.Context) (models.ReviewStats, error) {
		return models.ReviewStats{}, nil
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reviews/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"total_reviews": 0,
		"positive_reviews": 0,
		"neutral_reviews": 0,
		"negative_reviews": 0,
		"average_rating": 0,
		"positive_percentage": 0,
		"negative_percentage": 0
	}`, rec.Body.String())
}
