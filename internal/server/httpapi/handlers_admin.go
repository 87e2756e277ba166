package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleAdminUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func (s *Server) handleAdminPredictions(c *gin.Context) {
	predictions, err := s.predictions.ListAll(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "predictions": predictions})
}

func (s *Server) handleAdminStats(c *gin.Context) {
	stats, err := s.predictions.Stats(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

func (s *Server) handleAdminAnalytics(c *gin.Context) {
	report, err := s.predictions.Analytics(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analytics": report})
}

func (s *Server) handleAdminUserActivity(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	feed, err := s.predictions.Activity(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "activity": feed})
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid user id"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleAdminPromote(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := s.users.Promote(c.Request.Context(), id); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleAdminDelete(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	claims := currentClaims(c)

	if err := s.users.Delete(c.Request.Context(), claims.UserID, id); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleAdminExport(c *gin.Context) {
	result, err := s.exports.Export(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "export": result})
}
