package controllers

import (
	"net/http"
	"strconv"

	"github.com/Sage-GtHub/neurostate-sub005/gateway"
	"github.com/Sage-GtHub/neurostate-sub005/models"
	"github.com/Sage-GtHub/neurostate-sub005/services"

	"github.com/gin-gonic/gin"
)

// GenerateForecasts triggers model-backed forecast generation. One in-flight
// request per user; overlapping calls get 409.
func GenerateForecasts(gw *gateway.Client, guard *services.GenerationGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := getUserID(c)
		if userID == "" {
			return
		}
		days := 7
		if d := c.Query("days"); d != "" {
			if n, err := strconv.Atoi(d); err == nil && n > 0 {
				days = n
			}
		}

		count, err := services.GenerateForecasts(c.Request.Context(), gw, guard, userID, days)
		if err == services.ErrGenerationInFlight {
			c.JSON(http.StatusConflict, gin.H{"error": "A forecast is already being generated. Please wait."})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":   "Forecasts generated",
			"generated": count,
		})
	}
}

// GetMyForecasts returns up to 7 forward-dated forecasts, ascending.
func GetMyForecasts() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := getUserID(c)
		if userID == "" {
			return
		}
		forecasts, err := services.GetForecasts(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if forecasts == nil {
			forecasts = []models.Forecast{}
		}
		c.JSON(http.StatusOK, forecasts)
	}
}
