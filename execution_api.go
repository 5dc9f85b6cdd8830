package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/config"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/models"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/utils"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/workflow"
)

// respondError maps the workflow error taxonomy onto HTTP statuses and a
// uniform error envelope. Transition rejections carry a structured detail
// object (distance, photo counts, incomplete items) for the mobile app.
func respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if detail := utils.ErrorDetail(err); detail != nil {
		body["detail"] = detail
	}
	if cid, ok := utils.GetCorrelationIdFromContext(c.Request.Context()); ok {
		body["correlation_id"] = cid
	}
	c.JSON(utils.HTTPStatus(err), body)
}

func jobIdParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return 0, false
	}
	return id, true
}

func getExecutionHandler(settings config.SettingsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobId, ok := jobIdParam(c)
		if !ok {
			return
		}
		actorId, _ := utils.GetUserIdFromContext(c.Request.Context())

		detail, err := workflow.GetExecutionDetail(c.Request.Context(), config.GetDB(), settings, jobId, actorId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

type executionTransitionRequest struct {
	Action    string   `json:"action" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func patchExecutionHandler(settings config.SettingsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobId, ok := jobIdParam(c)
		if !ok {
			return
		}
		actorId, _ := utils.GetUserIdFromContext(c.Request.Context())

		var req executionTransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		action, err := models.ParseExecutionAction(req.Action)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		outcome, err := workflow.TransitionExecution(c.Request.Context(), config.GetDB(), config.GetLogger(), settings, workflow.TransitionInput{
			JobId:     jobId,
			ActorId:   actorId,
			Action:    action,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"status":  outcome.Status,
			"message": outcome.Message,
		})
	}
}

type checklistToggleRequest struct {
	ItemId    int   `json:"item_id" binding:"required"`
	Completed *bool `json:"completed" binding:"required"`
}

func patchChecklistHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobId, ok := jobIdParam(c)
		if !ok {
			return
		}
		actorId, _ := utils.GetUserIdFromContext(c.Request.Context())

		var req checklistToggleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		if err := workflow.ToggleChecklistItem(c.Request.Context(), config.GetDB(), jobId, actorId, req.ItemId, *req.Completed); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"item_id": req.ItemId, "completed": *req.Completed})
	}
}
