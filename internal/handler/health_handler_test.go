package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard-api/internal/database"
)

func TestHealthHandler(t *testing.T) {
	db, err := database.NewInMemory("health_handler")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	tests := []struct {
		name           string
		handler        *HealthHandler
		path           string
		expectedStatus int
	}{
		{"liveness", NewHealthHandler(nil, nil), "/health", http.StatusOK},
		{"DB 연결됨", NewHealthHandler(db, nil), "/ready", http.StatusOK},
		{"DB 없음", NewHealthHandler(nil, nil), "/ready", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(nil)
			router.GET("/health", tt.handler.Health)
			router.GET("/ready", tt.handler.Ready)

			w := performRequest(router, http.MethodGet, tt.path, "", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
