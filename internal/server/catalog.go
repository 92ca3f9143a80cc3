package server

import (
	"net/http"
	"strings"

	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListStudents(c *gin.Context) {
	tutorID, err := snowflake.ParseString(strings.TrimSpace(c.Query("tutor_id")))
	if err != nil || tutorID == 0 {
		AbortWithError(c, pricingdomain.ErrInvalidTutor)
		return
	}

	resp, err := s.studentRepo.ListByTutor(c.Request.Context(), s.db, tutorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	resp, err := s.productRepo.List(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
