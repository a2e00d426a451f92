package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/Sage-GtHub/neurostate-sub005/gateway"
	"github.com/Sage-GtHub/neurostate-sub005/models"
	"github.com/Sage-GtHub/neurostate-sub005/realtime"
	"github.com/Sage-GtHub/neurostate-sub005/services"

	"github.com/gin-gonic/gin"
)

// GenerateNudges triggers model-backed nudge generation for the current user.
func GenerateNudges(gw *gateway.Client, guard *services.GenerationGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := getUserID(c)
		if userID == "" {
			return
		}
		count, err := services.GenerateNudges(c.Request.Context(), gw, guard, userID)
		if err == services.ErrGenerationInFlight {
			c.JSON(http.StatusConflict, gin.H{"error": "Insights are already being generated. Please wait."})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":   "Insights generated",
			"generated": count,
		})
	}
}

// GetMyNudges lists the current user's nudges, optionally by status.
func GetMyNudges() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := getUserID(c)
		if userID == "" {
			return
		}
		status := models.NudgeStatus(c.Query("status"))
		limit := int64(50)
		if l := c.Query("limit"); l != "" {
			if n, err := strconv.ParseInt(l, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		nudges, err := services.GetNudgesByUser(userID, status, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if nudges == nil {
			nudges = []models.Nudge{}
		}
		c.JSON(http.StatusOK, nudges)
	}
}

// UpdateNudge applies a user transition (complete or dismiss).
func UpdateNudge() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := getUserID(c)
		if userID == "" {
			return
		}
		var body struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}

		nudge, err := services.UpdateNudgeStatus(userID, c.Param("id"), models.NudgeStatus(body.Status))
		if err == services.ErrInvalidTransition {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Nudge not found"})
			return
		}
		c.JSON(http.StatusOK, nudge)
	}
}

// StreamNudges serves the in-app toast channel over SSE. Visibility and
// push-permission facts ride in as query params and can be updated by
// reconnecting; push delivery itself belongs to the platform layer, so this
// endpoint only ever emits toasts.
func StreamNudges(bridge *realtime.Bridge) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := getUserID(c)
		if userID == "" {
			return
		}

		toasts := make(chan realtime.ToastEvent, 16)
		sub := &realtime.Subscriber{
			UserID: userID,
			Toast: func(t realtime.ToastEvent) {
				select {
				case toasts <- t:
				default: // slow client; at-most-once means we drop
				}
			},
		}
		sub.SetState(realtime.DeliveryState{
			Hidden:      c.Query("hidden") == "true",
			PushGranted: c.Query("push_granted") == "true",
		})
		unsubscribe := bridge.Subscribe(sub)
		defer unsubscribe()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		c.Stream(func(w io.Writer) bool {
			select {
			case t := <-toasts:
				c.SSEvent("toast", t)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
