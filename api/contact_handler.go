package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type contactRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Server) contactUs(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := s.services.ContactService().ContactUs(c.Request.Context(), req.Email, req.Message); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "message sent"})
}
