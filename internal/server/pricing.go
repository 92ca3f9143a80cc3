package server

import (
	"net/http"
	"strings"

	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	"github.com/gin-gonic/gin"
)

type quotePricingRequest struct {
	TutorID   string                           `json:"tutor_id"`
	Students  []pricingdomain.StudentSelection `json:"students"`
	Certified *bool                            `json:"certified"`
}

func (s *Server) QuotePricing(c *gin.Context) {
	var req quotePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pricingSvc.Quote(c.Request.Context(), pricingdomain.QuoteRequest{
		TutorID:   strings.TrimSpace(req.TutorID),
		Students:  req.Students,
		Certified: req.Certified,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
