package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"occupancy_backend/internal/models"
	"occupancy_backend/internal/services"
	"occupancy_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReports struct {
	services.ReportService
}

func (stubReports) Get180DayLimitReport(context.Context) (*models.LimitReport, error) {
	return &models.LimitReport{LimitNights: 180, Properties: []models.LimitPropertyStatus{}}, nil
}

func (stubReports) GetPortfolioMetrics(_ context.Context, year, month int, _ *models.RoomFilter) (*models.PortfolioMetrics, error) {
	return &models.PortfolioMetrics{Year: year, Month: month}, nil
}

func TestRoutesRequireTokenAndRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens, err := utils.NewTokenManager("router-secret", time.Hour)
	require.NoError(t, err)

	engine := gin.New()
	Setup(engine, Services{Reports: stubReports{}, Tokens: tokens})

	viewer, _, err := tokens.GenerateAccessToken(1, "aki", models.RoleViewer)
	require.NoError(t, err)
	manager, _, err := tokens.GenerateAccessToken(2, "jun", models.RoleManager)
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"ping is public", "/ping", "", http.StatusOK},
		{"metrics need a token", "/api/v1/metrics/portfolio?year=2025&month=1", "", http.StatusUnauthorized},
		{"viewer cannot read revenue", "/api/v1/metrics/portfolio?year=2025&month=1", viewer, http.StatusForbidden},
		{"viewer reads the limit report", "/api/v1/metrics/limit-180", viewer, http.StatusOK},
		{"manager reads revenue", "/api/v1/metrics/portfolio?year=2025&month=1", manager, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
