package controllers

import (
	"net/http"
	"strconv"

	"github.com/Sage-GtHub/neurostate-sub005/helpers"
	"github.com/Sage-GtHub/neurostate-sub005/models"
	"github.com/Sage-GtHub/neurostate-sub005/services"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) string {
	claimsVal, ok := c.Get("claims")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return ""
	}
	claims, ok := claimsVal.(*helpers.Claims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid claims"})
		return ""
	}
	return claims.UserID
}

// IngestMetrics accepts a batch of samples from a sync job or manual entry.
func IngestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := getUserID(c)
		if userID == "" {
			return
		}
		var body struct {
			Samples []models.MetricSample `json:"samples"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid samples payload"})
			return
		}
		for _, s := range body.Samples {
			if err := validate.Struct(s); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		count, err := services.IngestSamples(userID, body.Samples)
		if err == services.ErrNoSamples {
			c.JSON(http.StatusBadRequest, gin.H{"error": "samples must not be empty"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ingested": count})
	}
}

// GetMyMetrics returns recent samples for the current user, newest first.
func GetMyMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := getUserID(c)
		if userID == "" {
			return
		}
		limit := int64(100)
		if l := c.Query("limit"); l != "" {
			if n, err := strconv.ParseInt(l, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		samples, err := services.GetRecentSamples(userID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, samples)
	}
}

// GetMyReadiness computes the readiness score over the recent window.
func GetMyReadiness() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := getUserID(c)
		if userID == "" {
			return
		}
		result, err := services.GetReadinessForUser(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
