package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/config"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/models"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/utils"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/workflow"
)

func requireAdmin(c *gin.Context) bool {
	role, ok := utils.GetUserRoleFromContext(c.Request.Context())
	if !ok || models.UserRole(role) != models.UserRoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return false
	}
	return true
}

// noShowSweepHandler runs one detection pass on demand. The background
// sweeper covers steady state; this exists for ops and for staging
// environments where the sweeper is disabled.
func noShowSweepHandler(settings config.SettingsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		remediated, err := workflow.RunNoShowSweep(c.Request.Context(), config.GetDB(), config.GetLogger(), settings)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"remediated": remediated})
	}
}

func outboxRetryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		affected, err := workflow.RetryFailedOutboxEvents(c.Request.Context(), config.GetDB())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"requeued": affected})
	}
}

func outboxRevertDeadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		affected, err := workflow.RevertDeadOutboxEvents(c.Request.Context(), config.GetDB())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reverted": affected})
	}
}
