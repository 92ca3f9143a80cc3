package server

import (
	"net/http"
	"strconv"
	"strings"

	pricingconfigdomain "github.com/aulapay/aulapay/internal/pricingconfig/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetPricingConfig(c *gin.Context) {
	resp, err := s.pricingConfigSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePricingConfigRequest struct {
	AdminID string                           `json:"admin_id"`
	Reason  *string                          `json:"reason"`
	Changes pricingconfigdomain.FieldUpdates `json:"changes"`
}

func (s *Server) UpdatePricingConfig(c *gin.Context) {
	var req updatePricingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pricingConfigSvc.Update(c.Request.Context(), pricingconfigdomain.UpdateRequest{
		AdminID: strings.TrimSpace(req.AdminID),
		Reason:  req.Reason,
		Changes: req.Changes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPricingConfigHistory(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid value"))
			return
		}
		limit = parsed
	}

	resp, err := s.pricingConfigSvc.History(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
