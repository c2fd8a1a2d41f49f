package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistari-app/vistari-api/internal/service"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
)

type fakeReferralSrv struct {
	summary *service.ReferralSummary
	err     error
	lastID  string
}

func (f *fakeReferralSrv) Summary(_ context.Context, userID string) (*service.ReferralSummary, error) {
	f.lastID = userID
	return f.summary, f.err
}

func TestReferralHandlerSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeReferralSrv{summary: &service.ReferralSummary{
		Code:            "VISAB2C3",
		ValidReferrals:  7,
		RewardsEarned:   1,
		NextRewardAfter: 3,
	}}
	handler := NewReferralHandler(srv)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, httptest.NewRequest(http.MethodGet, "/referrals/me", nil))

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", srv.lastID)
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "VISAB2C3", envelope.Data["code"])
	assert.Equal(t, float64(7), envelope.Data["valid_referrals"])
}

func TestReferralHandlerSummaryUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReferralHandler(&fakeReferralSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/referrals/me", nil)

	handler.Summary(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReferralHandlerSummaryError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReferralHandler(&fakeReferralSrv{err: appErrors.ErrStorage})

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, httptest.NewRequest(http.MethodGet, "/referrals/me", nil))

	handler.Summary(c)

	assert.Equal(t, appErrors.ErrStorage.Status, rec.Code)
}
