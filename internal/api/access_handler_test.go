package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medishare-backend-go/internal/core"
	"medishare-backend-go/internal/models"
	"medishare-backend-go/internal/token"
)

type stubAccessService struct {
	view *core.ReportView
	err  error
}

func (s *stubAccessService) RedeemOTP(context.Context, string, string) (*core.ReportView, error) {
	return s.view, s.err
}

func (s *stubAccessService) RedeemQR(context.Context, string) (*core.ReportView, error) {
	return s.view, s.err
}

func accessRouter(svc core.AccessService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAccessHandler(svc)
	router.POST("/otp-access", handler.OtpAccess)
	router.POST("/qr-validate", handler.QrValidate)
	return router
}

func TestOtpAccessSuccess(t *testing.T) {
	t.Parallel()
	view := &core.ReportView{Report: &models.Report{ID: "report-1", Title: "X-Ray"}, URL: "https://media.test/x"}
	router := accessRouter(&stubAccessService{view: view})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/otp-access", strings.NewReader(`{"token":"tok","otp":"123456"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"X-Ray"`)
}

func TestOtpAccessMissingFields(t *testing.T) {
	t.Parallel()
	router := accessRouter(&stubAccessService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/otp-access", strings.NewReader(`{"token":"tok"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOtpAccessErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"wrong code", core.ErrInvalidOtp, http.StatusUnauthorized},
		{"expired token", token.ErrTokenExpired, http.StatusUnauthorized},
		{"bad token", token.ErrTokenInvalid, http.StatusUnauthorized},
		{"missing report", core.ErrReportNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			router := accessRouter(&stubAccessService{err: tc.err})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/qr-validate", strings.NewReader(`{"token":"tok"}`))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
