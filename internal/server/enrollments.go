package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	enrollmentdomain "github.com/aulapay/aulapay/internal/enrollment/domain"
	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	"github.com/aulapay/aulapay/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createEnrollmentsRequest struct {
	TutorID   string                           `json:"tutor_id"`
	Year      int                              `json:"year"`
	Month     int                              `json:"month"`
	Students  []pricingdomain.StudentSelection `json:"students"`
	Certified *bool                            `json:"certified"`
}

func (s *Server) CreateEnrollments(c *gin.Context) {
	var req createEnrollmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.Create(c.Request.Context(), enrollmentdomain.CreateRequest{
		TutorID:   strings.TrimSpace(req.TutorID),
		Year:      req.Year,
		Month:     req.Month,
		Students:  req.Students,
		Certified: req.Certified,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEnrollments(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := enrollmentdomain.ListRequest{
		TutorID:    strings.TrimSpace(c.Query("tutor_id")),
		Pagination: page,
	}
	if period := strings.TrimSpace(c.Query("period")); period != "" {
		req.Period = &period
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		req.Status = &status
	}

	resp, err := s.enrollmentSvc.ListForTutor(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePaymentRequest struct {
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paid_at"`
	PaymentMethod *string    `json:"payment_method"`
	ReceiptURL    *string    `json:"receipt_url"`
	Notes         *string    `json:"notes"`
}

func (s *Server) UpdatePaymentStatus(c *gin.Context) {
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.enrollmentSvc.UpdatePaymentStatus(c.Request.Context(), enrollmentdomain.UpdatePaymentRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		Status:        req.Status,
		PaidAt:        req.PaidAt,
		PaymentMethod: req.PaymentMethod,
		ReceiptURL:    req.ReceiptURL,
		Notes:         req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTutorTotals(c *gin.Context) {
	year, month, err := periodQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.enrollmentSvc.TutorTotals(c.Request.Context(), strings.TrimSpace(c.Query("tutor_id")), year, month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// periodQuery parses the year and month query parameters. Both are required
// on endpoints that aggregate a single billing period.
func periodQuery(c *gin.Context) (int, int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(c.Query("year")))
	if err != nil {
		return 0, 0, newValidationError("year", "invalid_year", "invalid value")
	}
	month, err := strconv.Atoi(strings.TrimSpace(c.Query("month")))
	if err != nil {
		return 0, 0, newValidationError("month", "invalid_month", "invalid value")
	}
	return year, month, nil
}
