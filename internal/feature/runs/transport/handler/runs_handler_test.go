package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"ngx_pipeline/internal/feature/runs/domain/entity"
	"ngx_pipeline/internal/feature/runs/transport/handler"
)

// mockRunsLister is a function-field RunsLister.
type mockRunsLister struct {
	ListFunc func(ctx context.Context, kind entity.Kind, limit int) ([]entity.Run, error)
}

func (m *mockRunsLister) List(ctx context.Context, kind entity.Kind, limit int) ([]entity.Run, error) {
	return m.ListFunc(ctx, kind, limit)
}

func TestRunsHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	started := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		list           func(ctx context.Context, kind entity.Kind, limit int) ([]entity.Run, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: filtered by kind",
			url:  "/runs?kind=ingest&limit=5",
			list: func(ctx context.Context, kind entity.Kind, limit int) ([]entity.Run, error) {
				assert.Equal(t, entity.KindIngest, kind)
				assert.Equal(t, 5, limit)
				return []entity.Run{{
					ID:         "r1",
					Kind:       entity.KindIngest,
					StartedAt:  started,
					FinishedAt: started.Add(time.Minute),
					Summary:    `{"created":3}`,
				}}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"id":"r1","kind":"ingest","dry_run":false,"started_at":"2024-03-04T18:00:00Z","finished_at":"2024-03-04T18:01:00Z","success":true,"summary":{"created":3}}]`,
		},
		{
			name: "success: defaults and failed run",
			url:  "/runs",
			list: func(ctx context.Context, kind entity.Kind, limit int) ([]entity.Run, error) {
				assert.Equal(t, entity.Kind(""), kind)
				assert.Equal(t, 0, limit)
				return []entity.Run{{
					ID:         "r2",
					Kind:       entity.KindMerge,
					DryRun:     true,
					StartedAt:  started,
					FinishedAt: started,
					Error:      "boom",
				}}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"id":"r2","kind":"merge","dry_run":true,"started_at":"2024-03-04T18:00:00Z","finished_at":"2024-03-04T18:00:00Z","success":false,"error":"boom"}]`,
		},
		{
			name: "edge case: invalid limit falls back to zero",
			url:  "/runs?limit=abc",
			list: func(ctx context.Context, kind entity.Kind, limit int) ([]entity.Run, error) {
				assert.Equal(t, 0, limit)
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "error: usecase fails",
			url:  "/runs",
			list: func(ctx context.Context, kind entity.Kind, limit int) ([]entity.Run, error) {
				return nil, errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"db down"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewRunsHandler(&mockRunsLister{ListFunc: tt.list})
			r := gin.New()
			r.GET("/runs", h.List)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
