package commission

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"funnelforge/pkg/config"
	"funnelforge/pkg/middleware"
)

func newTestRouter(t *testing.T, svc *Service, token string) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Error())

	cfg := &config.Config{InternalToken: token}
	svc.RegisterRoutes(router, cfg)

	return router
}

func TestReleaseEndpointRequiresToken(t *testing.T) {
	svc, _ := newTestService(t, &notifierMock{})
	router := newTestRouter(t, svc, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/commissions/release", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/commissions/release", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReleaseEndpointDisabledWithoutToken(t *testing.T) {
	svc, _ := newTestService(t, &notifierMock{})
	router := newTestRouter(t, svc, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/commissions/release", nil)
	req.Header.Set("Authorization", "Bearer anything")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestReleaseEndpointReturnsSummary(t *testing.T) {
	svc, db := newTestService(t, &notifierMock{})
	link := seedAffiliate(t, db, "acc-1")
	seedPayment(t, db, "pay-1", link, seedOpts{
		heldUntil:  time.Now().Add(-time.Hour).UTC(),
		commission: decimal.NewFromInt(50),
	})

	router := newTestRouter(t, svc, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/commissions/release", nil)
	req.Header.Set("Authorization", "Bearer secret")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var summary RunSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.True(t, summary.Success)
	require.Equal(t, 1, summary.TotalReleased)
}

// partial failure still answers 200; callers read success from the body
func TestReleaseEndpointPartialFailure(t *testing.T) {
	svc, db := newTestService(t, &notifierMock{})
	link := seedAffiliate(t, db, "acc-1")
	seedPayment(t, db, "pay-1", link, seedOpts{
		heldUntil:  time.Now().Add(-time.Hour).UTC(),
		commission: decimal.NewFromInt(50),
		skipHold:   true,
	})

	router := newTestRouter(t, svc, "secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/commissions/release", nil)
	req.Header.Set("Authorization", "Bearer secret")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var summary RunSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.False(t, summary.Success)
	require.Equal(t, 1, summary.TotalFailed)
}
