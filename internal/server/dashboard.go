package server

import (
	"net/http"
	"strconv"
	"strings"

	dashboarddomain "github.com/aulapay/aulapay/internal/dashboard/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetDashboardMetrics(c *gin.Context) {
	req := dashboarddomain.MetricsRequest{
		TutorID: strings.TrimSpace(c.Query("tutor_id")),
	}

	// year and month are optional; when absent the service uses the
	// current period.
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("year", "invalid_year", "invalid value"))
			return
		}
		req.Year = year
	}
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("month", "invalid_month", "invalid value"))
			return
		}
		req.Month = month
	}

	resp, err := s.dashboardSvc.Metrics(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDiscountedStudents(c *gin.Context) {
	year, month, err := periodQuery(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.enrollmentSvc.StudentsWithDiscounts(c.Request.Context(), year, month, strings.TrimSpace(c.Query("tutor_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
