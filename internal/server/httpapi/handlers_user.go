package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/premio/internal/server/models"
	"github.com/dmitrijs2005/premio/internal/validation"
)

func (s *Server) handlePredict(c *gin.Context) {
	var attrs models.AttributeSet
	if err := c.ShouldBindJSON(&attrs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": bindingErrorMessage(err)})
		return
	}

	claims := currentClaims(c)
	if claims.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "admin accounts cannot submit predictions"})
		return
	}

	p, err := s.predictions.Record(c.Request.Context(), claims.UserID, attrs)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"prediction":           p.PredictedPremium,
		"formatted_prediction": formatCurrency(p.PredictedPremium),
	})
}

type bmiRequest struct {
	HeightCm float64 `json:"height_cm" binding:"required"`
	WeightKg float64 `json:"weight_kg" binding:"required"`
}

func (s *Server) handleBMI(c *gin.Context) {
	var req bmiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": bindingErrorMessage(err)})
		return
	}

	bmi, err := validation.CalculateBMI(req.HeightCm, req.WeightKg)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"bmi":      bmi,
		"category": validation.BMICategory(bmi),
	})
}

func (s *Server) handlePredictions(c *gin.Context) {
	claims := currentClaims(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	history, err := s.predictions.ListForUser(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "predictions": history})
}

func (s *Server) handleProfile(c *gin.Context) {
	claims := currentClaims(c)

	user, err := s.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	summary, err := s.predictions.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user, "summary": summary})
}
