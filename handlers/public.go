package handlers

import (
	"net/http"

	"food-ordering-api/models"
	"food-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetStateMachineInfo returns the order lifecycle for documentation
func GetStateMachineInfo(c *gin.Context) {
	statuses := append(statemachine.Sequence(), models.StatusCancelled)
	described := make([]gin.H, 0, len(statuses))
	for _, s := range statuses {
		info := statemachine.Describe(s)
		described = append(described, gin.H{
			"status":      s,
			"label":       info.Label,
			"description": info.Description,
			"cancellable": statemachine.IsCancellable(s),
			"terminal":    statemachine.IsTerminal(s),
			"next":        statemachine.ValidTransitionsFrom(s),
		})
	}

	respondData(c, http.StatusOK, gin.H{
		"transitions":     statemachine.GetAllTransitions(),
		"statuses":        described,
		"checkpoints":     statemachine.Checkpoints(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"description":     "Food Ordering Order Lifecycle State Machine",
	}, "")
}

// Health reports liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Food Ordering API",
		"version": "1.0.0",
	})
}
