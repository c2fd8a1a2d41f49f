package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vistari-app/vistari-api/internal/service"
	appErrors "github.com/vistari-app/vistari-api/pkg/errors"
	"github.com/vistari-app/vistari-api/pkg/response"
)

type referralService interface {
	Summary(ctx context.Context, userID string) (*service.ReferralSummary, error)
}

// ReferralHandler exposes the referral program endpoints.
type ReferralHandler struct {
	service referralService
}

// NewReferralHandler creates a new handler.
func NewReferralHandler(svc referralService) *ReferralHandler {
	return &ReferralHandler{service: svc}
}

// Summary godoc
// @Summary My referral standing
// @Description Returns the caller's code, valid referral count and rewards
// @Tags Referrals
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /referrals/me [get]
func (h *ReferralHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}
